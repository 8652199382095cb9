package tools

import (
	"context"
	"errors"
	"testing"
)

func newEchoTool(name string, cog Cog) *Tool {
	return &Tool{
		Name: name,
		Cog:  cog,
		Execute: func(ctx context.Context, args map[string]any) (*Output, error) {
			msg, _ := args["message"].(string)
			return &Output{Text: "Echo: " + msg}, nil
		},
		Schema: Schema{
			Required:   []string{"message"},
			Properties: map[string]Property{"message": {Type: "string"}},
		},
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry(nil)
	if reg == nil {
		t.Fatal("NewRegistry returned nil")
	}
	if reg.Count() != 0 {
		t.Errorf("new registry should be empty, got %d tools", reg.Count())
	}
}

func TestRegisterAndGet(t *testing.T) {
	reg := NewRegistry(nil)

	if err := reg.Register(newEchoTool("echo", CogSettings)); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	got := reg.Get("echo")
	if got == nil {
		t.Fatal("Get returned nil for registered tool")
	}
	if got.Name != "echo" {
		t.Errorf("got name %q, want %q", got.Name, "echo")
	}
	if !reg.Has("echo") {
		t.Error("Has returned false for registered tool")
	}
}

func TestRegisterDuplicate(t *testing.T) {
	reg := NewRegistry(nil)

	tool := newEchoTool("dupe", CogSettings)
	if err := reg.Register(tool); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}

	err := reg.Register(tool)
	if !errors.Is(err, ErrToolAlreadyRegistered) {
		t.Fatalf("expected ErrToolAlreadyRegistered, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	reg := NewRegistry(nil)

	tests := []struct {
		name    string
		tool    *Tool
		wantErr error
	}{
		{
			name:    "empty name",
			tool:    &Tool{Name: "", Execute: func(ctx context.Context, args map[string]any) (*Output, error) { return nil, nil }},
			wantErr: ErrToolNameEmpty,
		},
		{
			name:    "nil execute",
			tool:    &Tool{Name: "test", Execute: nil},
			wantErr: ErrToolExecuteNil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := reg.Register(tt.tool)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestByCog(t *testing.T) {
	reg := NewRegistry(nil)

	reg.MustRegister(newEchoTool("price", CogCrypto))
	reg.MustRegister(newEchoTool("chart", CogCrypto))
	reg.MustRegister(newEchoTool("convert", CogExchange))

	crypto := reg.ByCog(CogCrypto)
	if len(crypto) != 2 {
		t.Fatalf("expected 2 crypto tools, got %d", len(crypto))
	}
	// Sorted by name.
	if crypto[0].Name != "chart" || crypto[1].Name != "price" {
		t.Errorf("ByCog not sorted by name: %s, %s", crypto[0].Name, crypto[1].Name)
	}
}

func TestDispatch(t *testing.T) {
	reg := NewRegistry(nil)
	reg.MustRegister(newEchoTool("echo", CogSettings))

	res, err := reg.Dispatch(context.Background(), Request{
		Tool: "echo",
		Args: map[string]any{"message": "hello"},
	})
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if res.Output.Text != "Echo: hello" {
		t.Errorf("got %q, want %q", res.Output.Text, "Echo: hello")
	}
	if !res.IsSuccess() {
		t.Error("expected IsSuccess to be true")
	}

	// Missing required arg is rejected before the handler runs.
	_, err = reg.Dispatch(context.Background(), Request{Tool: "echo"})
	if !errors.Is(err, ErrMissingRequiredArg) {
		t.Errorf("expected ErrMissingRequiredArg, got %v", err)
	}

	// Unknown tool name.
	_, err = reg.Dispatch(context.Background(), Request{Tool: "nonexistent"})
	if !errors.Is(err, ErrToolNotFound) {
		t.Errorf("expected ErrToolNotFound, got %v", err)
	}
}

func TestDispatchTypeValidation(t *testing.T) {
	reg := NewRegistry(nil)

	reg.MustRegister(&Tool{
		Name: "typed",
		Cog:  CogSettings,
		Execute: func(ctx context.Context, args map[string]any) (*Output, error) {
			return &Output{Text: "ok"}, nil
		},
		Schema: Schema{
			Required: []string{"amount"},
			Properties: map[string]Property{
				"amount":  {Type: "number"},
				"symbols": {Type: "array"},
				"verbose": {Type: "boolean"},
			},
		},
	})

	tests := []struct {
		name    string
		args    map[string]any
		wantErr bool
	}{
		{name: "float amount", args: map[string]any{"amount": 12.5}, wantErr: false},
		{name: "int amount", args: map[string]any{"amount": int64(3)}, wantErr: false},
		{name: "string amount", args: map[string]any{"amount": "12"}, wantErr: true},
		{name: "array ok", args: map[string]any{"amount": 1.0, "symbols": []string{"EUR"}}, wantErr: false},
		{name: "bool wrong", args: map[string]any{"amount": 1.0, "verbose": "yes"}, wantErr: true},
		{name: "undeclared passthrough", args: map[string]any{"amount": 1.0, "extra": struct{}{}}, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reg.Execute(context.Background(), "typed", tt.args)
			if tt.wantErr && !errors.Is(err, ErrInvalidArgType) {
				t.Errorf("expected ErrInvalidArgType, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestDispatchIgnoresArgumentShape(t *testing.T) {
	// Two tools with structurally overlapping optional arguments must be
	// distinguished purely by the request's tool name.
	reg := NewRegistry(nil)

	mk := func(name string) *Tool {
		return &Tool{
			Name: name,
			Cog:  CogSettings,
			Execute: func(ctx context.Context, args map[string]any) (*Output, error) {
				return &Output{Text: name}, nil
			},
			Schema: Schema{
				Properties: map[string]Property{
					"prompt": {Type: "string"},
					"model":  {Type: "string"},
				},
			},
		}
	}
	reg.MustRegister(mk("first"))
	reg.MustRegister(mk("second"))

	args := map[string]any{"prompt": "x", "model": "y"}

	res, err := reg.Dispatch(context.Background(), Request{Tool: "second", Args: args})
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if res.Output.Text != "second" {
		t.Errorf("dispatched to %q, want %q", res.Output.Text, "second")
	}
}
