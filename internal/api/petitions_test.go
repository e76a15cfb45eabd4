package api

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"jroconnect/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const petitionList = `[
  {
    "id": 7,
    "title": "Clean the river",
    "description": "Stop dumping",
    "category": "environment",
    "visibility": "public",
    "status": "published",
    "creator": {"id": 3, "username": "asha", "email": "asha@example.org", "role": "citizen"},
    "supporter_count": 12,
    "evidences": [{"id": 1, "title": "photo", "file_type": "image", "case_tag": "R-1", "verification_status": "verified"}]
  },
  {"id": 8, "title": "Draft", "status": "draft", "creator": null, "supporter_count": 0, "evidences": []}
]`

func TestPetitions(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/petitions/", r.URL.Path)
		w.Write([]byte(petitionList))
	})

	petitions, err := c.Petitions(context.Background())
	require.NoError(t, err)
	require.Len(t, petitions, 2)

	p := petitions[0]
	assert.Equal(t, 7, p.ID)
	assert.Equal(t, "Clean the river", p.Title)
	assert.Equal(t, types.PetitionPublished, p.Status)
	assert.Equal(t, 12, p.SupporterCount)
	require.NotNil(t, p.Creator)
	assert.Equal(t, "asha", p.Creator.Username)
	require.Len(t, p.Evidences, 1)
	assert.Equal(t, "verified", p.Evidences[0].VerificationStatus)

	assert.Nil(t, petitions[1].Creator)
}

func TestPetitions_Paginated(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"count": 1, "next": null, "results": [{"id": 1, "title": "A", "status": "published"}]}`))
	})

	petitions, err := c.Petitions(context.Background())
	require.NoError(t, err)
	require.Len(t, petitions, 1)
	assert.Equal(t, "A", petitions[0].Title)
}

func TestPetitions_FollowsNext(t *testing.T) {
	var srvURL string
	srv, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/petitions/", r.URL.Path)
		switch r.URL.Query().Get("page") {
		case "":
			fmt.Fprintf(w, `{"count": 3, "next": %q, "results": [{"id": 1, "status": "published"}]}`, srvURL+"/api/petitions/?page=2")
		case "2":
			w.Write([]byte(`{"count": 3, "next": "?page=3", "results": [{"id": 2, "status": "published"}]}`))
		case "3":
			w.Write([]byte(`{"count": 3, "next": null, "results": [{"id": 3, "status": "draft"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	srvURL = srv.URL

	petitions, err := c.Petitions(context.Background())
	require.NoError(t, err)
	require.Len(t, petitions, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{petitions[0].ID, petitions[1].ID, petitions[2].ID})
}

func TestPetitions_PageFailure(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"next": "?page=2", "results": [{"id": 1}]}`))
	})

	_, err := c.Petitions(context.Background())
	assert.Equal(t, KindStatus, KindOf(err))
}

func TestPetitions_UnexpectedShape(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"detail": "Authentication credentials were not provided."}`))
	})

	_, err := c.Petitions(context.Background())
	assert.ErrorIs(t, err, ErrEmptyResult)
}

func TestPetition(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/petitions/7/", r.URL.Path)
		w.Write([]byte(`{"id": 7, "title": "Clean the river", "status": "published", "supporter_count": "12"}`))
	})

	p, err := c.Petition(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 7, p.ID)
	assert.Equal(t, 12, p.SupporterCount)
}

func TestPetition_NotFound(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.Petition(context.Background(), 404)
	assert.Equal(t, KindStatus, KindOf(err))
}
