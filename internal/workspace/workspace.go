// Package workspace owns the live template and scene of one project and runs
// every host command against them.
package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"entitysync/internal/config"
	"entitysync/internal/entity"
	"entitysync/internal/export"
	"entitysync/internal/logging"
	"entitysync/internal/paths"
	"entitysync/internal/reconcile"
	"entitysync/internal/scene"
	"entitysync/internal/search"
	"entitysync/internal/store"
	"entitysync/internal/validate"
)

var (
	ErrObjectNotFound   = scene.ErrObjectNotFound
	ErrObjectExists     = scene.ErrObjectExists
	ErrUnknownClass     = config.ErrUnknownClass
	ErrUnknownProperty  = errors.New("object has no such property")
	ErrNoTemplateSource = errors.New("no template source configured")
)

type Options struct {
	Config *config.ProjectConfig
	// Store may be nil, in which case nothing is persisted.
	Store store.Store
	Log   *logrus.Entry
}

// Workspace serializes all operations with a mutex so a reload never
// interleaves with a search, export or edit.
type Workspace struct {
	mu sync.Mutex

	cfg      *config.ProjectConfig
	resolver *paths.Resolver
	store    store.Store
	log      *logrus.Entry

	template     *config.Template
	scene        *scene.Scene
	templatePath string
	exportPath   string
}

// Open resolves the configured paths, restores the last template snapshot and
// scene from the store, and falls back to reading the template file when no
// snapshot exists yet.
func Open(ctx context.Context, opts Options) (*Workspace, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("project config is required")
	}
	log := opts.Log
	if log == nil {
		log = logging.Discard()
	}

	w := &Workspace{
		cfg:      opts.Config,
		resolver: paths.NewResolver(opts.Config.Root),
		store:    opts.Store,
		log:      log.WithField("project", opts.Config.Project),
		template: config.Empty(),
		scene:    scene.New(),
	}

	var err error
	if w.templatePath, err = w.resolver.Resolve(opts.Config.Template); err != nil {
		return nil, fmt.Errorf("resolving template path: %w", err)
	}
	if w.exportPath, err = w.resolver.Resolve(opts.Config.Export.Path); err != nil {
		return nil, fmt.Errorf("resolving export path: %w", err)
	}

	if w.store != nil {
		if err := w.store.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
	}

	restored, err := w.restoreTemplate(ctx)
	if err != nil {
		return nil, err
	}
	if err := w.restoreScene(ctx); err != nil {
		return nil, err
	}

	if !restored {
		if _, err := w.ReloadTemplate(ctx); err != nil {
			w.log.WithError(err).Warn("template not loaded, starting with an empty template")
		}
	}
	return w, nil
}

func (w *Workspace) restoreTemplate(ctx context.Context) (bool, error) {
	if w.store == nil {
		return false, nil
	}
	snap, err := w.store.LoadTemplateSnapshot(ctx, w.cfg.Project)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("loading template snapshot: %w", err)
	}
	tmpl, err := config.RestoreTemplate(snap.Body)
	if err != nil {
		w.log.WithError(err).Warn("stored template snapshot is unreadable")
		return false, nil
	}
	w.template = tmpl
	w.log.WithFields(logrus.Fields{
		"classes": len(tmpl.Keys()) - 1,
		"saved":   snap.SavedAt,
	}).Debug("restored template snapshot")
	return true, nil
}

func (w *Workspace) restoreScene(ctx context.Context) error {
	if w.store == nil {
		return nil
	}
	records, err := w.store.LoadScene(ctx, w.cfg.Project)
	if err != nil {
		return fmt.Errorf("loading scene: %w", err)
	}
	for _, rec := range records {
		obj, err := decodeObject(rec)
		if err != nil {
			return fmt.Errorf("decoding object %s: %w", rec.Name, err)
		}
		w.scene.Put(obj)
	}
	return nil
}

func decodeObject(rec store.ObjectRecord) (*scene.Object, error) {
	obj := &scene.Object{
		Name:     rec.Name,
		Entity:   entity.Instance{Class: rec.Class},
		Selected: rec.Selected,
	}
	if len(rec.Properties) > 0 {
		if err := json.Unmarshal(rec.Properties, &obj.Entity.Properties); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

func encodeObject(obj *scene.Object) (store.ObjectRecord, error) {
	props := obj.Entity.Properties
	if props == nil {
		props = []*entity.Property{}
	}
	data, err := json.Marshal(props)
	if err != nil {
		return store.ObjectRecord{}, err
	}
	return store.ObjectRecord{
		Name:       obj.Name,
		Class:      obj.Entity.Class,
		Selected:   obj.Selected,
		Properties: data,
	}, nil
}

func (w *Workspace) Close(ctx context.Context) error {
	if w.store == nil {
		return nil
	}
	return w.store.Close(ctx)
}

func (w *Workspace) Config() *config.ProjectConfig { return w.cfg }

func (w *Workspace) TemplatePath() string { return w.templatePath }

func (w *Workspace) ExportPath() string { return w.exportPath }

// Template returns the live template. Templates are replaced wholesale and
// never mutated, so the result is safe to read without the lock.
func (w *Workspace) Template() *config.Template {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.template
}

// ReloadTemplate reads the template file and, when it parses, replaces the
// live template and reconciles every object. A failed read leaves the
// previous template in place.
func (w *Workspace) ReloadTemplate(ctx context.Context) (reconcile.Report, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cfg.Template == "" {
		return reconcile.Report{}, ErrNoTemplateSource
	}
	tmpl, err := config.LoadTemplate(w.templatePath)
	if err != nil {
		return reconcile.Report{}, err
	}
	w.template = tmpl

	report := reconcile.New(tmpl).Reconcile(w.scene)
	w.log.WithFields(logrus.Fields{
		"component":  "reconcile",
		"classes":    len(tmpl.Keys()) - 1,
		"rebuilt":    report.Count(reconcile.Rebuilt),
		"downgraded": report.Count(reconcile.Downgraded),
	}).Info("template reloaded")
	for _, res := range report.Objects {
		if res.Outcome == reconcile.Downgraded {
			w.log.WithFields(logrus.Fields{"object": res.Object, "class": res.Class}).Warn("class removed from template, object reset to None")
		}
	}

	if w.store != nil {
		snapshot, err := tmpl.Snapshot()
		if err != nil {
			return report, err
		}
		snap := store.NewTemplateSnapshot(w.resolver.Relative(w.templatePath), snapshot)
		if err := w.store.SaveTemplateSnapshot(ctx, w.cfg.Project, snap); err != nil {
			return report, err
		}
	}
	return report, w.saveLocked(ctx)
}

// Objects returns copies of every object in scene order.
func (w *Workspace) Objects() []scene.Object {
	w.mu.Lock()
	defer w.mu.Unlock()
	objects := w.scene.Objects()
	out := make([]scene.Object, 0, len(objects))
	for _, obj := range objects {
		out = append(out, copyObject(obj))
	}
	return out
}

// Selected returns copies of the objects picked by the last search.
func (w *Workspace) Selected() []scene.Object {
	w.mu.Lock()
	defer w.mu.Unlock()
	objects := w.scene.Selected()
	out := make([]scene.Object, 0, len(objects))
	for _, obj := range objects {
		out = append(out, copyObject(obj))
	}
	return out
}

func (w *Workspace) Object(name string) (scene.Object, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	obj, err := w.objectLocked(name)
	if err != nil {
		return scene.Object{}, err
	}
	return copyObject(obj), nil
}

func copyObject(obj *scene.Object) scene.Object {
	return scene.Object{Name: obj.Name, Entity: obj.Entity.Clone(), Selected: obj.Selected}
}

func (w *Workspace) objectLocked(name string) (*scene.Object, error) {
	obj, ok := w.scene.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, name)
	}
	return obj, nil
}

func (w *Workspace) HasObject(name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.scene.Get(name)
	return ok
}

func (w *Workspace) AddObject(ctx context.Context, name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.scene.Add(name); err != nil {
		return err
	}
	w.log.WithField("object", name).Debug("object added")
	return w.saveLocked(ctx)
}

func (w *Workspace) RemoveObject(ctx context.Context, name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.scene.Remove(name); err != nil {
		return err
	}
	w.log.WithField("object", name).Debug("object removed")
	return w.saveLocked(ctx)
}

func (w *Workspace) RenameObject(ctx context.Context, oldName, newName string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.scene.Rename(oldName, newName); err != nil {
		return err
	}
	return w.saveLocked(ctx)
}

// SetClass assigns class to the object and rebuilds it at the class defaults.
// Assigning the class it already has is a no-op.
func (w *Workspace) SetClass(ctx context.Context, name, class string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	obj, err := w.objectLocked(name)
	if err != nil {
		return err
	}
	if !w.template.Contains(class) {
		return fmt.Errorf("%w: %s", ErrUnknownClass, class)
	}
	if obj.Entity.Class == class {
		return nil
	}
	if err := reconcile.New(w.template).Reassign(obj, class); err != nil {
		return err
	}
	w.log.WithFields(logrus.Fields{"object": name, "class": class}).Info("class assigned")
	return w.saveLocked(ctx)
}

// SetProperty writes raw into one property. Strings are parsed into the
// property's type, so "1, 2, 3" fills a vector and "7" an int.
func (w *Workspace) SetProperty(ctx context.Context, name, variable string, raw any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	obj, err := w.objectLocked(name)
	if err != nil {
		return err
	}
	prop, ok := obj.Entity.Property(variable)
	if !ok {
		return fmt.Errorf("%w: %s.%s", ErrUnknownProperty, name, variable)
	}

	next := prop.Value
	if s, isText := raw.(string); isText && !next.IsTextual() {
		err = next.Parse(s)
	} else {
		err = next.Set(raw)
	}
	if err != nil {
		return fmt.Errorf("setting %s.%s: %w", name, variable, err)
	}
	prop.Value = next
	return w.saveLocked(ctx)
}

// Search runs q over the scene, updates the selection and returns the names
// of the matching objects.
func (w *Workspace) Search(ctx context.Context, class string, mode search.Mode, variable string, op search.Operator, text string) ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	q, err := search.NewQuery(w.template, class, mode, variable, op, text)
	if err != nil {
		return nil, err
	}
	matched, err := search.Run(w.scene, q)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(matched))
	for _, obj := range matched {
		names = append(names, obj.Name)
	}
	if len(names) == 0 {
		w.log.WithField("class", class).Info("no objects found")
	}
	return names, w.persistLocked(ctx)
}

// Export writes the interchange document to the configured path and returns
// the number of exported objects.
func (w *Workspace) Export(ctx context.Context) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.exportLocked()
}

// ExportTo writes the interchange document to path instead of the configured
// export path.
func (w *Workspace) ExportTo(ctx context.Context, path string) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	resolved, err := w.resolver.Resolve(path)
	if err != nil {
		return 0, err
	}
	return w.writeExport(resolved)
}

func (w *Workspace) exportLocked() (int, error) {
	return w.writeExport(w.exportPath)
}

func (w *Workspace) writeExport(path string) (int, error) {
	doc := export.Build(w.scene, w.template)
	if err := export.Write(path, doc, w.cfg.Export.Indent); err != nil {
		return 0, err
	}
	w.log.WithFields(logrus.Fields{"path": path, "objects": len(doc.Entries)}).Info("export written")
	return len(doc.Entries), nil
}

// Document builds the export document without writing it.
func (w *Workspace) Document() export.Document {
	w.mu.Lock()
	defer w.mu.Unlock()
	return export.Build(w.scene, w.template)
}

// Save persists the scene and, with export.on_save set, writes the export.
func (w *Workspace) Save(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.saveLocked(ctx)
}

func (w *Workspace) saveLocked(ctx context.Context) error {
	if err := w.persistLocked(ctx); err != nil {
		return err
	}
	if w.cfg.Export.OnSave {
		if _, err := w.exportLocked(); err != nil {
			return err
		}
	}
	return nil
}

func (w *Workspace) persistLocked(ctx context.Context) error {
	if w.store == nil {
		return nil
	}
	objects := w.scene.Objects()
	records := make([]store.ObjectRecord, 0, len(objects))
	for _, obj := range objects {
		rec, err := encodeObject(obj)
		if err != nil {
			return fmt.Errorf("encoding object %s: %w", obj.Name, err)
		}
		records = append(records, rec)
	}
	if err := w.store.SaveScene(ctx, w.cfg.Project, records); err != nil {
		return fmt.Errorf("saving scene: %w", err)
	}
	return nil
}

// Validate checks every object against the live template.
func (w *Workspace) Validate() *validate.Report {
	w.mu.Lock()
	defer w.mu.Unlock()
	return validate.Run(w.template, w.scene)
}
