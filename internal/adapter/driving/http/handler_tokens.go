package httphandler

import (
	"net/http"
	"strings"
)

// StoreCredential saves the caller's own API key and username.
func (h *Handler) StoreCredential(w http.ResponseWriter, r *http.Request) {
	var req StoreCredentialRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidBody.Error())
		return
	}

	apiKey := strings.TrimSpace(req.APIKey)
	username := strings.TrimSpace(req.ExternalUsername)
	if username == "" {
		username = strings.TrimSpace(req.CalComUsername)
	}
	if apiKey == "" || username == "" {
		writeError(w, http.StatusBadRequest, "apiKey and externalUsername are required")
		return
	}

	identity := identityFromContext(r.Context())
	cred, err := h.credentials.Store(r.Context(), identity.SubjectID, apiKey, username)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, StoreCredentialResponse{
		Success:          true,
		ExternalUsername: cred.ExternalUsername,
	})
}

// CredentialStatus reports whether the effective subject has a usable
// credential. Reading status migrates a legacy record if one exists.
func (h *Handler) CredentialStatus(w http.ResponseWriter, r *http.Request) {
	subjectID, ok := h.effectiveSubject(w, r, r.URL.Query().Get("mentorUid"))
	if !ok {
		return
	}

	cred, err := h.credentials.Load(r.Context(), subjectID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	resp := CredentialStatusResponse{Connected: cred != nil}
	if cred != nil {
		resp.ExternalUsername = cred.ExternalUsername
	}
	writeJSON(w, http.StatusOK, resp)
}

// RemoveCredential deletes the effective subject's credential. The target
// may be given as a mentorUid query parameter or in a JSON body.
func (h *Handler) RemoveCredential(w http.ResponseWriter, r *http.Request) {
	var req DelegationRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidBody.Error())
		return
	}

	targetID := r.URL.Query().Get("mentorUid")
	if targetID == "" {
		targetID = req.MentorUID
	}

	subjectID, ok := h.effectiveSubject(w, r, targetID)
	if !ok {
		return
	}

	if err := h.credentials.Remove(r.Context(), subjectID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}
