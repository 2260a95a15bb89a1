package mcp

import (
	"context"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"entitysync/internal/config"
	"entitysync/internal/reconcile"
	"entitysync/internal/scene"
	"entitysync/internal/search"
)

type GetTemplateInput struct{}

type ListObjectsInput struct {
	Class    string `json:"class,omitempty" jsonschema:"only objects of this class"`
	Selected bool   `json:"selected,omitempty" jsonschema:"only selected objects"`
}

type GetObjectInput struct {
	Name string `json:"name" jsonschema:"object name"`
}

type SetClassInput struct {
	Name  string `json:"name" jsonschema:"object name"`
	Class string `json:"class" jsonschema:"template class, or None to clear"`
}

type SetPropertyInput struct {
	Name     string `json:"name" jsonschema:"object name"`
	Variable string `json:"variable" jsonschema:"property name"`
	Value    any    `json:"value" jsonschema:"new value; strings are parsed into the property type"`
}

type SearchObjectsInput struct {
	Class    string `json:"class" jsonschema:"class to search"`
	Mode     string `json:"mode,omitempty" jsonschema:"class or variable"`
	Variable string `json:"variable,omitempty" jsonschema:"variable compared in variable mode"`
	Operator string `json:"operator,omitempty" jsonschema:"one of <, <=, ==, >, >="`
	Value    string `json:"value,omitempty" jsonschema:"value to compare against"`
}

type ReloadTemplateInput struct{}

type ExportInput struct {
	Path string `json:"path,omitempty" jsonschema:"override the configured export path"`
}

type TemplateOutput struct {
	Classes []ClassOutput `json:"classes"`
}

type ClassOutput struct {
	Name      string           `json:"name"`
	UID       string           `json:"uid,omitempty"`
	Variables []VariableOutput `json:"variables"`
}

type VariableOutput struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Default     any      `json:"default"`
	Description string   `json:"description,omitempty"`
	Options     []string `json:"options,omitempty"`
}

type ObjectSummaryOutput struct {
	Name     string `json:"name"`
	Class    string `json:"class"`
	Selected bool   `json:"selected"`
}

type ListObjectsOutput struct {
	Objects []ObjectSummaryOutput `json:"objects"`
}

type ObjectOutput struct {
	Name       string           `json:"name"`
	Class      string           `json:"class"`
	Selected   bool             `json:"selected"`
	Properties []PropertyOutput `json:"properties"`
}

type PropertyOutput struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Value       any    `json:"value"`
	Description string `json:"description,omitempty"`
}

type SearchObjectsOutput struct {
	Matches []string `json:"matches"`
}

type ReloadTemplateOutput struct {
	Classes    []string `json:"classes"`
	Rebuilt    int      `json:"rebuilt"`
	Downgraded int      `json:"downgraded"`
	Unchanged  int      `json:"unchanged"`
}

type ExportOutput struct {
	Path    string `json:"path"`
	Objects int    `json:"objects"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_template",
		Description: "Return the entity template classes and their variables",
	}, s.handleGetTemplate)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_objects",
		Description: "List scene objects with optional filters",
	}, s.handleListObjects)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_object",
		Description: "Retrieve one object and its property values",
	}, s.handleGetObject)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "set_class",
		Description: "Assign a template class to an object, resetting it to the class defaults",
	}, s.handleSetClass)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "set_property",
		Description: "Set one property value on an object",
	}, s.handleSetProperty)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "search_objects",
		Description: "Select objects by class or by comparing a variable",
	}, s.handleSearchObjects)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "reload_template",
		Description: "Re-read the template file and reconcile every object",
	}, s.handleReloadTemplate)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "export",
		Description: "Write the engine import file",
	}, s.handleExport)
}

func (s *Server) handleGetTemplate(ctx context.Context, req *sdk.CallToolRequest, input GetTemplateInput) (*sdk.CallToolResult, TemplateOutput, error) {
	return nil, templateOutputFromConfig(s.ws.Template()), nil
}

func (s *Server) handleListObjects(ctx context.Context, req *sdk.CallToolRequest, input ListObjectsInput) (*sdk.CallToolResult, ListObjectsOutput, error) {
	objects := s.ws.Objects()
	if input.Selected {
		objects = s.ws.Selected()
	}
	output := make([]ObjectSummaryOutput, 0, len(objects))
	for _, obj := range objects {
		if input.Class != "" && obj.Entity.Class != input.Class {
			continue
		}
		output = append(output, ObjectSummaryOutput{Name: obj.Name, Class: obj.Entity.Class, Selected: obj.Selected})
	}
	return nil, ListObjectsOutput{Objects: output}, nil
}

func (s *Server) handleGetObject(ctx context.Context, req *sdk.CallToolRequest, input GetObjectInput) (*sdk.CallToolResult, ObjectOutput, error) {
	if input.Name == "" {
		return nil, ObjectOutput{}, fmt.Errorf("name is required")
	}
	obj, err := s.ws.Object(input.Name)
	if err != nil {
		return nil, ObjectOutput{}, err
	}
	return nil, objectOutputFromScene(obj), nil
}

func (s *Server) handleSetClass(ctx context.Context, req *sdk.CallToolRequest, input SetClassInput) (*sdk.CallToolResult, ObjectOutput, error) {
	if input.Name == "" || input.Class == "" {
		return nil, ObjectOutput{}, fmt.Errorf("name and class are required")
	}
	if err := s.ws.SetClass(ctx, input.Name, input.Class); err != nil {
		return nil, ObjectOutput{}, err
	}
	return s.handleGetObject(ctx, req, GetObjectInput{Name: input.Name})
}

func (s *Server) handleSetProperty(ctx context.Context, req *sdk.CallToolRequest, input SetPropertyInput) (*sdk.CallToolResult, ObjectOutput, error) {
	if input.Name == "" || input.Variable == "" {
		return nil, ObjectOutput{}, fmt.Errorf("name and variable are required")
	}
	if err := s.ws.SetProperty(ctx, input.Name, input.Variable, input.Value); err != nil {
		return nil, ObjectOutput{}, err
	}
	return s.handleGetObject(ctx, req, GetObjectInput{Name: input.Name})
}

func (s *Server) handleSearchObjects(ctx context.Context, req *sdk.CallToolRequest, input SearchObjectsInput) (*sdk.CallToolResult, SearchObjectsOutput, error) {
	if input.Class == "" {
		return nil, SearchObjectsOutput{}, fmt.Errorf("class is required")
	}
	mode, err := search.ParseMode(input.Mode)
	if err != nil {
		return nil, SearchObjectsOutput{}, err
	}
	op := search.Operator(input.Operator)
	if op == "" {
		op = search.Equal
	}
	matches, err := s.ws.Search(ctx, input.Class, mode, input.Variable, op, input.Value)
	if err != nil {
		return nil, SearchObjectsOutput{}, err
	}
	return nil, SearchObjectsOutput{Matches: matches}, nil
}

func (s *Server) handleReloadTemplate(ctx context.Context, req *sdk.CallToolRequest, input ReloadTemplateInput) (*sdk.CallToolResult, ReloadTemplateOutput, error) {
	report, err := s.ws.ReloadTemplate(ctx)
	if err != nil {
		s.log.WithError(err).Warn("reload_template failed")
		return nil, ReloadTemplateOutput{}, err
	}
	return nil, ReloadTemplateOutput{
		Classes:    s.ws.Template().Keys(),
		Rebuilt:    report.Count(reconcile.Rebuilt),
		Downgraded: report.Count(reconcile.Downgraded),
		Unchanged:  report.Count(reconcile.Unchanged),
	}, nil
}

func (s *Server) handleExport(ctx context.Context, req *sdk.CallToolRequest, input ExportInput) (*sdk.CallToolResult, ExportOutput, error) {
	path := s.ws.ExportPath()
	var (
		n   int
		err error
	)
	if input.Path != "" {
		path = input.Path
		n, err = s.ws.ExportTo(ctx, input.Path)
	} else {
		n, err = s.ws.Export(ctx)
	}
	if err != nil {
		return nil, ExportOutput{}, err
	}
	return nil, ExportOutput{Path: path, Objects: n}, nil
}

func templateOutputFromConfig(tmpl *config.Template) TemplateOutput {
	classes := tmpl.Classes()
	out := TemplateOutput{Classes: make([]ClassOutput, 0, len(classes))}
	for _, class := range classes {
		classOut := ClassOutput{
			Name:      class.Name,
			UID:       class.UID,
			Variables: make([]VariableOutput, 0, len(class.Variables)),
		}
		for _, v := range class.Variables {
			classOut.Variables = append(classOut.Variables, VariableOutput{
				Name:        v.Name,
				Type:        v.Type,
				Default:     v.Default.Raw(),
				Description: v.Description,
				Options:     v.Options,
			})
		}
		out.Classes = append(out.Classes, classOut)
	}
	return out
}

func objectOutputFromScene(obj scene.Object) ObjectOutput {
	out := ObjectOutput{
		Name:       obj.Name,
		Class:      obj.Entity.Class,
		Selected:   obj.Selected,
		Properties: make([]PropertyOutput, 0, len(obj.Entity.Properties)),
	}
	for _, prop := range obj.Entity.Properties {
		out.Properties = append(out.Properties, PropertyOutput{
			Name:        prop.Name,
			Type:        prop.Type,
			Value:       prop.Value.Raw(),
			Description: prop.Description,
		})
	}
	return out
}
