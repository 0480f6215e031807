// Package identity resolves the third-party sign-in payload into the
// opaque application identifier the collaborators are keyed by. The same
// provider subject id always maps to the same uid within the profile
// expiry window; a new subject gets a fresh, collision-resistant uid.
package identity

import (
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Profile is the client-side user record, stored in a cookie with a
// fixed expiry and re-used across visits.
type Profile struct {
	UID       string    `json:"uid"`
	Name      string    `json:"name"`
	Picture   string    `json:"picture"`
	Email     string    `json:"email"`
	SubjectID string    `json:"subjectId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the profile's window has passed.
func (p Profile) Expired(now time.Time) bool {
	return !p.ExpiresAt.After(now)
}

// Service owns the subject-to-uid mapping.
type Service struct {
	mu        sync.Mutex
	bySubject map[string]Profile
	usedUIDs  map[string]struct{}
	ttl       time.Duration
	now       func() time.Time
}

// NewService builds the identity service with the given profile lifetime.
func NewService(ttl time.Duration) *Service {
	return &Service{
		bySubject: make(map[string]Profile),
		usedUIDs:  make(map[string]struct{}),
		ttl:       ttl,
		now:       time.Now,
	}
}

// SignIn resolves a provider payload to a profile. Repeated sign-ins with
// the same subject id inside the expiry window return the identical uid;
// the window is refreshed on each sign-in.
func (s *Service) SignIn(subjectID, name, picture, email string) Profile {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if existing, ok := s.bySubject[subjectID]; ok && !existing.Expired(now) {
		existing.Name = name
		existing.Picture = picture
		existing.Email = email
		existing.ExpiresAt = now.Add(s.ttl)
		s.bySubject[subjectID] = existing
		return existing
	}

	profile := Profile{
		UID:       s.deriveUIDLocked(subjectID),
		Name:      name,
		Picture:   picture,
		Email:     email,
		SubjectID: subjectID,
		ExpiresAt: now.Add(s.ttl),
	}
	s.bySubject[subjectID] = profile
	s.usedUIDs[profile.UID] = struct{}{}
	return profile
}

// Resume re-validates a cookie-restored profile against the mapping. An
// expired profile is rejected; an unknown one is re-admitted so the
// mapping survives process restarts.
func (s *Service) Resume(p Profile) (Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.Expired(s.now()) || p.UID == "" || p.SubjectID == "" {
		return Profile{}, false
	}
	if _, ok := s.bySubject[p.SubjectID]; !ok {
		s.bySubject[p.SubjectID] = p
		s.usedUIDs[p.UID] = struct{}{}
	}
	return s.bySubject[p.SubjectID], true
}

// SignOut drops the subject's mapping.
func (s *Service) SignOut(subjectID string) {
	s.mu.Lock()
	delete(s.bySubject, subjectID)
	s.mu.Unlock()
}

// deriveUIDLocked hashes the subject id into a short stable uid. Distinct
// subjects colliding on the hash fall back to a random suffix.
func (s *Service) deriveUIDLocked(subjectID string) string {
	h := fnv.New32a()
	h.Write([]byte(subjectID))
	uid := fmt.Sprintf("uid_%d", h.Sum32())
	if _, taken := s.usedUIDs[uid]; taken {
		uid = fmt.Sprintf("%s_%s", uid, uuid.NewString()[:8])
	}
	return uid
}
