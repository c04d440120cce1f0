package store

import (
	"testing"

	"giftbox_back_end/internal/models"

	"github.com/stretchr/testify/assert"
)

// Sans keyspace users configuré, chaque opération ScyllaUsers passe par
// les prepared statements de internal/database et doit propager l'erreur
// de session au lieu de paniquer.
func TestScyllaUsersPropagateSessionErrors(t *testing.T) {
	t.Setenv("SCYLLA_KS_USERS_KEYSPACE", "")
	users := &ScyllaUsers{}

	err := users.Create(&models.User{ID: "u1", Username: "alice", Email: "alice@example.com"})
	assert.Error(t, err)

	_, err = users.ByID("u1")
	assert.Error(t, err)

	_, err = users.ByEmail("alice@example.com")
	assert.Error(t, err)

	err = users.Update(&models.User{ID: "u1", Username: "alice"})
	assert.Error(t, err)
}
