package newsroom

import (
	"context"
	"encoding/json"
	"io"
	"mime/multipart"

	"github.com/goliatone/go-router"
)

// testContext is a recording router.Context stub. Requests are described
// through the exported fields; handler output lands in the Recorded* ones.
type testContext struct {
	Payload any
	QueryArgs map[string]string
	Params  map[string]string
	Headers map[string]string
	Values  map[any]any
	Ctx     context.Context

	RecordedStatus   int
	RecordedJSON     any
	RecordedRedirect string
	RedirectStatus   int
	NoContentStatus  int
	NextCalled       bool
}

var _ router.Context = (*testContext)(nil)

func newTestContext() *testContext {
	return &testContext{
		QueryArgs: map[string]string{},
		Params:  map[string]string{},
		Headers: map[string]string{},
		Values:  map[any]any{},
		Ctx:     context.Background(),
	}
}

func (c *testContext) Next() error {
	c.NextCalled = true
	return nil
}

func (c *testContext) Context() context.Context       { return c.Ctx }
func (c *testContext) SetContext(ctx context.Context) { c.Ctx = ctx }
func (c *testContext) Path() string                   { return "" }
func (c *testContext) Method() string                 { return "" }
func (c *testContext) Body() []byte                   { return nil }

func (c *testContext) Status(code int) router.Context {
	c.RecordedStatus = code
	return c
}

func (c *testContext) SendString(s string) error { return nil }
func (c *testContext) Send(b []byte) error       { return nil }

func (c *testContext) JSON(code int, val any) error {
	c.RecordedStatus = code
	c.RecordedJSON = val
	return nil
}

func (c *testContext) NoContent(code int) error {
	c.NoContentStatus = code
	return nil
}

func (c *testContext) Render(name string, bind any, layout ...string) error { return nil }

func (c *testContext) Redirect(path string, status ...int) error {
	c.RecordedRedirect = path
	if len(status) > 0 {
		c.RedirectStatus = status[0]
	}
	return nil
}

func (c *testContext) RedirectToRoute(name string, data router.ViewContext, status ...int) error {
	return nil
}

func (c *testContext) RedirectBack(fallback string, status ...int) error { return nil }

func (c *testContext) SetHeader(key, val string) router.Context {
	c.Headers[key] = val
	return c
}

func (c *testContext) Header(key string) string { return c.Headers[key] }

func (c *testContext) Get(key string, defaultValue any) any {
	if v, ok := c.Values[key]; ok {
		return v
	}
	return defaultValue
}

func (c *testContext) GetBool(key string, defaultValue bool) bool { return defaultValue }
func (c *testContext) GetInt(key string, def int) int             { return def }
func (c *testContext) Set(key string, val any)                    { c.Values[key] = val }

// Bind copies the configured payload into the handler's target struct
func (c *testContext) Bind(i any) error {
	if c.Payload == nil {
		return nil
	}
	raw, err := json.Marshal(c.Payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, i)
}

func (c *testContext) BindJSON(i any) error     { return c.Bind(i) }
func (c *testContext) BindXML(i any) error      { return c.Bind(i) }
func (c *testContext) BindQuery(i any) error    { return c.Bind(i) }
func (c *testContext) CookieParser(i any) error { return nil }

func (c *testContext) Cookie(cookie *router.Cookie) {}

func (c *testContext) Cookies(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (c *testContext) Param(key string, defaultValue ...string) string {
	if v, ok := c.Params[key]; ok {
		return v
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (c *testContext) ParamsInt(key string, defaultValue int) int { return defaultValue }

func (c *testContext) Query(key string, defaultValue ...string) string {
	if v, ok := c.QueryArgs[key]; ok {
		return v
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (c *testContext) QueryValues(key string) []string {
	if v, ok := c.QueryArgs[key]; ok {
		return []string{v}
	}
	return nil
}

func (c *testContext) QueryInt(key string, defaultValue int) int { return defaultValue }

func (c *testContext) Queries() map[string]string { return c.QueryArgs }

func (c *testContext) GetString(key string, defaultValue string) string {
	if v, ok := c.Headers[key]; ok {
		return v
	}
	return defaultValue
}

func (c *testContext) Locals(key any, value ...any) any {
	if len(value) > 0 {
		c.Values[key] = value[0]
		return nil
	}
	return c.Values[key]
}

func (c *testContext) OriginalURL() string           { return "" }
func (c *testContext) OnNext(callback func() error)  {}
func (c *testContext) Referer() string               { return "" }

func (c *testContext) LocalsMerge(key any, value map[string]any) map[string]any {
	existing, _ := c.Values[key].(map[string]any)
	if existing == nil {
		existing = map[string]any{}
	}
	for k, v := range value {
		existing[k] = v
	}
	c.Values[key] = existing
	return existing
}

func (c *testContext) FormFile(key string) (*multipart.FileHeader, error) { return nil, nil }

func (c *testContext) FormValue(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (c *testContext) IP() string { return "" }

func (c *testContext) SendStatus(code int) error {
	c.RecordedStatus = code
	return nil
}

func (c *testContext) SendStream(r io.Reader) error { return nil }

func (c *testContext) RouteName() string              { return "" }
func (c *testContext) RouteParams() map[string]string { return c.Params }
