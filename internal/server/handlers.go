package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/permscope/permscope/pkg/diff"
	"github.com/permscope/permscope/pkg/export"
	"github.com/permscope/permscope/pkg/perms"
)

type CompareRequest struct {
	Kind             string   `json:"kind"` // profile | permissionSet
	IDs              []string `json:"ids"`
	ProfileIDs       []string `json:"profileIds"` // optional merge-in when kind is permissionSet
	IncludeUnchanged bool     `json:"includeUnchanged"`
}

type CompareResponse struct {
	ComparisonID string       `json:"comparisonId"`
	Result       *diff.Result `json:"result"`
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Kind != "profile" && req.Kind != "permissionSet" {
		http.Error(w, "kind must be 'profile' or 'permissionSet'", http.StatusBadRequest)
		return
	}
	if len(req.IDs)+len(req.ProfileIDs) < 2 {
		http.Error(w, "at least 2 ids are required", http.StatusBadRequest)
		return
	}

	n := perms.NewNormalizer(s.SF)
	var profiles []*perms.Profile

	if req.Kind == "profile" {
		out, err := n.NormalizeProfiles(r.Context(), req.IDs)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		profiles = out
	} else {
		out, err := n.NormalizePermissionSets(r.Context(), req.IDs)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		profiles = out
		if len(req.ProfileIDs) > 0 {
			merged, err := n.NormalizeProfiles(r.Context(), req.ProfileIDs)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			profiles = append(profiles, merged...)
		}
	}

	entities := make([]diff.Entity, 0, len(profiles))
	for _, p := range profiles {
		entities = append(entities, diff.Entity{ID: p.ID, DisplayName: p.DisplayName, Profile: p})
	}

	res, err := diff.Compare(entities)
	if err != nil {
		// Ids that did not resolve were skipped; fewer than 2 survivors is
		// a request problem, not a server one.
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !req.IncludeUnchanged {
		res.Differences = export.WithoutUnchanged(res.Differences)
	}

	json.NewEncoder(w).Encode(CompareResponse{
		ComparisonID: uuid.NewString(),
		Result:       res,
	})
}

type entityRow struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	recs, err := s.SF.ListProfiles(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rows := make([]entityRow, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, entityRow{ID: rec.Get("Id").Str, Name: rec.Get("Name").Str})
	}
	json.NewEncoder(w).Encode(rows)
}

func (s *Server) handlePermissionSets(w http.ResponseWriter, r *http.Request) {
	recs, err := s.SF.ListPermissionSets(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rows := make([]entityRow, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, entityRow{ID: rec.Get("Id").Str, Name: rec.Get("Label").Str})
	}
	json.NewEncoder(w).Encode(rows)
}
