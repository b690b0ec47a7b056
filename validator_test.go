package routeprobe

import (
	"net/http"
	"testing"
)

func TestFailOn5xxValidatorRejectsServerErrors(t *testing.T) {
	v := NewFailOn5xxValidator()

	ok := v.Validate(&Response{Status: 200})
	if !ok.OK {
		t.Fatalf("expected 200 to pass")
	}

	notFound := v.Validate(&Response{Status: 404})
	if !notFound.OK {
		t.Fatalf("expected 404 to pass (default validator never rejects 4xx)")
	}

	serverErr := v.Validate(&Response{Status: 500})
	if serverErr.OK {
		t.Fatalf("expected 500 to fail")
	}
}

func TestContentTypeValidator(t *testing.T) {
	contracts := []StatusContract{{Status: 200, ContentType: "application/json"}}
	v := NewContentTypeValidator(contracts)

	header := http.Header{}
	header.Set("Content-Type", "application/json; charset=utf-8")
	ok := v.Validate(&Response{Status: 200, Header: header})
	if !ok.OK {
		t.Fatalf("expected matching content-type (ignoring charset) to pass")
	}

	wrongHeader := http.Header{}
	wrongHeader.Set("Content-Type", "text/plain")
	bad := v.Validate(&Response{Status: 200, Header: wrongHeader})
	if bad.OK {
		t.Fatalf("expected mismatched content-type to fail")
	}
}

func TestSchemaValidatorChecksBody(t *testing.T) {
	schema := JSONSchema{
		Type:     "object",
		Required: []string{"id"},
		Properties: map[string]JSONSchema{
			"id": {Type: "string"},
		},
	}
	contracts := []StatusContract{{Status: 200, Schema: schema}}
	v := NewSchemaValidator(contracts)

	ok := v.Validate(&Response{Status: 200, Body: []byte(`{"id":"abc"}`)})
	if !ok.OK {
		t.Fatalf("expected conforming body to pass: %v", ok.Reason)
	}

	bad := v.Validate(&Response{Status: 200, Body: []byte(`{}`)})
	if bad.OK {
		t.Fatalf("expected missing required field to fail")
	}

	malformed := v.Validate(&Response{Status: 200, Body: []byte(`not json`)})
	if malformed.OK {
		t.Fatalf("expected malformed JSON to fail")
	}
}

func TestCompositeValidatorAggregatesFailures(t *testing.T) {
	c := NewCompositeValidator(NewFailOn5xxValidator(), NewContentTypeValidator([]StatusContract{
		{Status: 500, ContentType: "application/json"},
	}))
	header := http.Header{}
	header.Set("Content-Type", "text/plain")
	v := c.Validate(&Response{Status: 500, Header: header})
	if v.OK {
		t.Fatalf("expected composite to fail when any child fails")
	}
	failed, ok := v.Details["failed_validators"].([]string)
	if !ok || len(failed) != 2 {
		t.Fatalf("expected both validators to be recorded as failed, got %v", v.Details)
	}
}
