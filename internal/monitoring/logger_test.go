package monitoring

import "testing"

func TestSetLogger(t *testing.T) {
	defer SetLogger(nil)

	var got string
	SetLogger(func(format string, v ...interface{}) { got = format })
	Logf("hello %s", "world")
	if got != "hello %s" {
		t.Errorf("captured format = %q", got)
	}

	SetLogger(nil)
	Logf("must not panic")
}
