package approval

import (
	"encoding/json"

	"github.com/odyssey-erp/odyssey-admin/internal/shared"
)

// VerificationState is the operator's in-progress action on an inbox. It
// lives in the session only and is dropped after a successful submission.
type VerificationState struct {
	SelectedRef string `json:"selected_ref"`
	Verified    bool   `json:"verified"`
	Comment     string `json:"comment"`
}

func stateKey(module string) string {
	return "verify:" + module
}

// LoadState reads the verification state of module from the session.
func LoadState(sess *shared.Session, module string) VerificationState {
	var st VerificationState
	if sess == nil {
		return st
	}
	raw := sess.Get(stateKey(module))
	if raw == "" {
		return st
	}
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return VerificationState{}
	}
	return st
}

// SaveState stores the verification state of module in the session.
func SaveState(sess *shared.Session, module string, st VerificationState) {
	if sess == nil {
		return
	}
	raw, err := json.Marshal(st)
	if err != nil {
		return
	}
	sess.Set(stateKey(module), string(raw))
}

// ClearState discards the verification state of module.
func ClearState(sess *shared.Session, module string) {
	if sess == nil {
		return
	}
	sess.Delete(stateKey(module))
}

// Select starts a new verification on ref, dropping any previous comment.
func (s VerificationState) Select(ref string) VerificationState {
	if s.SelectedRef == ref {
		return s
	}
	return VerificationState{SelectedRef: ref}
}
