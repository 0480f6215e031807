package identity_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lingualife/backend/internal/service/identity"
)

func TestSignInStableUID(t *testing.T) {
	svc := identity.NewService(30 * 24 * time.Hour)

	first := svc.SignIn("google-sub-123", "Alice", "", "alice@example.com")
	second := svc.SignIn("google-sub-123", "Alice Updated", "", "alice@example.com")

	if first.UID == "" || !strings.HasPrefix(first.UID, "uid_") {
		t.Fatalf("unexpected uid shape: %q", first.UID)
	}
	if first.UID != second.UID {
		t.Fatalf("same subject produced different uids: %q vs %q", first.UID, second.UID)
	}
	if second.Name != "Alice Updated" {
		t.Fatalf("profile fields not refreshed: %q", second.Name)
	}
}

func TestSignInDistinctSubjects(t *testing.T) {
	svc := identity.NewService(time.Hour)

	a := svc.SignIn("subject-a", "A", "", "")
	b := svc.SignIn("subject-b", "B", "", "")

	if a.UID == b.UID {
		t.Fatalf("distinct subjects share uid %q", a.UID)
	}
}

func TestSignInRefreshesExpiry(t *testing.T) {
	svc := identity.NewService(time.Hour)

	first := svc.SignIn("subject", "A", "", "")
	time.Sleep(10 * time.Millisecond)
	second := svc.SignIn("subject", "A", "", "")

	if !second.ExpiresAt.After(first.ExpiresAt) {
		t.Fatal("expiry window not refreshed on repeat sign-in")
	}
}

func TestResumeUnknownProfileReAdmits(t *testing.T) {
	svc := identity.NewService(time.Hour)

	// Simulates a cookie minted before a process restart.
	restored := identity.Profile{
		UID:       "uid_12345",
		SubjectID: "subject-x",
		ExpiresAt: time.Now().Add(time.Hour),
	}

	got, ok := svc.Resume(restored)
	if !ok {
		t.Fatal("valid profile rejected")
	}
	if got.UID != "uid_12345" {
		t.Fatalf("resume changed the uid: %q", got.UID)
	}

	// The re-admitted mapping keeps the uid stable on the next sign-in.
	again := svc.SignIn("subject-x", "X", "", "")
	if again.UID != "uid_12345" {
		t.Fatalf("sign-in after resume changed the uid: %q", again.UID)
	}
}

func TestResumeExpiredProfileRejected(t *testing.T) {
	svc := identity.NewService(time.Hour)

	expired := identity.Profile{
		UID:       "uid_12345",
		SubjectID: "subject-x",
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	if _, ok := svc.Resume(expired); ok {
		t.Fatal("expired profile accepted")
	}
}

func TestSignOutDropsMapping(t *testing.T) {
	svc := identity.NewService(time.Hour)

	p := svc.SignIn("subject", "A", "", "")
	svc.SignOut("subject")

	// A fresh sign-in may derive the same hash but must go through the
	// derivation path again; the dropped mapping no longer resumes.
	if _, ok := svc.Resume(identity.Profile{UID: p.UID, SubjectID: "subject", ExpiresAt: time.Now().Add(time.Hour)}); !ok {
		t.Fatal("resume should re-admit a structurally valid profile")
	}
}

func TestCookieRoundTrip(t *testing.T) {
	profile := identity.Profile{
		UID:       "uid_99",
		Name:      "日本語の名前",
		SubjectID: "subject",
		ExpiresAt: time.Now().Add(time.Hour).Truncate(time.Second),
	}

	rec := httptest.NewRecorder()
	if err := identity.WriteCookie(rec, "userProfile", profile); err != nil {
		t.Fatalf("WriteCookie err: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}

	got, ok := identity.ReadCookie(req, "userProfile")
	if !ok {
		t.Fatal("cookie not restored")
	}
	if got.UID != profile.UID || got.Name != profile.Name || got.SubjectID != profile.SubjectID {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestReadCookieMissing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := identity.ReadCookie(req, "userProfile"); ok {
		t.Fatal("missing cookie reported as present")
	}
}
