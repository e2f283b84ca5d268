package handlers

import (
	"fmt"
	"net/http"

	"github.com/scrypster/lifegraph/internal/storage"
)

// GraphNode is a person in the visualization graph.
type GraphNode struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	IsOwner bool     `json:"is_owner"`
	Tags    []string `json:"tags,omitempty"`
}

// GraphEdge is a relationship in the visualization graph.
type GraphEdge struct {
	ID       string `json:"id"`
	Source   string `json:"source"`
	Target   string `json:"target"`
	TypeID   string `json:"type_id"`
	TypeName string `json:"type_name"`
	Strength int    `json:"strength,omitempty"`
}

// GraphResponse is the response format for GET /api/graph.
type GraphResponse struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// Graph handles GET /api/graph. Every pair of connected people appears as a
// single edge: auto-created mirrors collapse onto the user-authored edge,
// and symmetric-type edges are deduplicated by unordered pair so "alice
// friend bob" and "bob friend alice" never both render.
func (h *API) Graph(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	nodes := []GraphNode{}
	for page := 1; ; page++ {
		result, err := h.store.ListPeople(ctx, storage.ListOptions{Page: page, Limit: 100})
		if err != nil {
			respondStorageError(w, "failed to list people", err)
			return
		}
		for _, p := range result.Items {
			nodes = append(nodes, GraphNode{ID: p.ID, Name: p.Name, IsOwner: p.IsOwner, Tags: p.Tags})
		}
		if !result.HasMore {
			break
		}
	}

	catalog, err := h.store.ListTypes(ctx)
	if err != nil {
		respondStorageError(w, "failed to list relationship types", err)
		return
	}
	symmetric := make(map[string]bool, len(catalog))
	for _, t := range catalog {
		symmetric[t.ID] = t.IsSymmetric
	}

	// Inactive people are absent from nodes; drop their edges too.
	known := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		known[n.ID] = true
	}

	edges := []GraphEdge{}
	seen := make(map[string]bool)
	for page := 1; ; page++ {
		result, err := h.store.ListRelationships(ctx, storage.ListOptions{Page: page, Limit: 100})
		if err != nil {
			respondStorageError(w, "failed to list relationships", err)
			return
		}
		for _, rel := range result.Items {
			if rel.AutoCreated {
				continue
			}
			if !known[rel.PersonA] || !known[rel.PersonB] {
				continue
			}
			if symmetric[rel.TypeID] {
				key := unorderedPairKey(rel.PersonA, rel.PersonB, rel.TypeID)
				if seen[key] {
					continue
				}
				seen[key] = true
			}
			edges = append(edges, GraphEdge{
				ID:       rel.ID,
				Source:   rel.PersonA,
				Target:   rel.PersonB,
				TypeID:   rel.TypeID,
				TypeName: rel.TypeName,
				Strength: rel.Strength,
			})
		}
		if !result.HasMore {
			break
		}
	}

	respondJSON(w, http.StatusOK, GraphResponse{Nodes: nodes, Edges: edges})
}

func unorderedPairKey(a, b, typeID string) string {
	if b < a {
		a, b = b, a
	}
	return fmt.Sprintf("%s|%s|%s", a, b, typeID)
}
