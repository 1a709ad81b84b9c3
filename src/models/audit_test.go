package models

import (
	"encoding/json"
	"testing"
)

func TestAuditDetails_MarshalPreservesOrder(t *testing.T) {
	details := AuditDetails{
		{Key: "zulu", Value: "1"},
		{Key: "alpha", Value: "2"},
		{Key: "mike", Value: "3"},
	}

	out, err := json.Marshal(details)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	expected := `{"zulu":"1","alpha":"2","mike":"3"}`
	if string(out) != expected {
		t.Errorf("expected %s, got %s", expected, out)
	}
}

func TestAuditDetails_MarshalEmpty(t *testing.T) {
	out, err := json.Marshal(AuditDetails{})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(out) != "{}" {
		t.Errorf("expected {}, got %s", out)
	}
}

func TestAuditDetails_MarshalEscapesValues(t *testing.T) {
	details := AuditDetails{
		{Key: "reason", Value: `quoted "string" here`},
	}

	out, err := json.Marshal(details)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded map[string]string
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["reason"] != `quoted "string" here` {
		t.Errorf("value mangled: %q", decoded["reason"])
	}
}

func TestIsValidRole(t *testing.T) {
	for _, role := range []string{RoleSuperAdmin, RoleAdmin, RoleModerator, RoleViewer} {
		if !IsValidRole(role) {
			t.Errorf("expected role %q to be valid", role)
		}
	}
	for _, role := range []string{"", "overlord", "Admin"} {
		if IsValidRole(role) {
			t.Errorf("expected role %q to be invalid", role)
		}
	}
}
