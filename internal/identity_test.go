package internal

import (
	"strings"
	"testing"
)

func TestResolveIdentity(t *testing.T) {
	tests := []struct {
		name string
		user *UserProfile
		want string
	}{
		{
			name: "authenticated id wins",
			user: &UserProfile{ID: "cust-42", Email: "a@example.com"},
			want: "cust-42",
		},
		{
			name: "email when id is missing",
			user: &UserProfile{Email: "a@example.com"},
			want: "a@example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := OpenTestKV(t)
			got := ResolveIdentity(tt.user, kv)
			if got != tt.want {
				t.Errorf("ResolveIdentity() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveIdentity_AnonymousIsStable(t *testing.T) {
	kv := OpenTestKV(t)

	first := ResolveIdentity(nil, kv)
	if first == "" {
		t.Fatal("ResolveIdentity() returned empty identity")
	}
	if !strings.HasPrefix(first, "anon-") {
		t.Errorf("anonymous identity = %q, want anon- prefix", first)
	}

	// The generated token is persisted and reused across calls.
	second := ResolveIdentity(nil, kv)
	if second != first {
		t.Errorf("repeated ResolveIdentity() = %q, want stable %q", second, first)
	}
}

func TestResolveIdentity_NeverEmpty(t *testing.T) {
	if got := ResolveIdentity(nil, nil); got == "" {
		t.Error("ResolveIdentity() without storage returned empty identity")
	}
}

func TestCachedUser_RoundTrip(t *testing.T) {
	kv := OpenTestKV(t)

	if got := LoadCachedUser(kv); got != nil {
		t.Errorf("LoadCachedUser() on empty store = %+v, want nil", got)
	}

	user := &UserProfile{ID: "cust-1", Name: "Ada", Email: "ada@example.com", Role: "user", AccessToken: "tok"}
	if err := SaveCachedUser(kv, user); err != nil {
		t.Fatalf("SaveCachedUser() error = %v", err)
	}

	got := LoadCachedUser(kv)
	if got == nil || got.ID != "cust-1" || got.AccessToken != "tok" {
		t.Errorf("LoadCachedUser() = %+v", got)
	}

	if err := ClearCachedUser(kv); err != nil {
		t.Fatalf("ClearCachedUser() error = %v", err)
	}
	if got := LoadCachedUser(kv); got != nil {
		t.Errorf("LoadCachedUser() after clear = %+v, want nil", got)
	}
}

func TestLoadCachedUser_Corrupt(t *testing.T) {
	kv := OpenTestKV(t)
	if err := kv.Set(cachedUserKey, "{broken"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if got := LoadCachedUser(kv); got != nil {
		t.Errorf("LoadCachedUser() over corrupt data = %+v, want nil", got)
	}
}
