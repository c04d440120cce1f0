package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPreparedQueriesRequireConfiguredKeyspace(t *testing.T) {
	t.Setenv("SCYLLA_KS_USERS_KEYSPACE", "")

	_, err := GetPreparedGetUserByEmail("alice@example.com")
	assert.Error(t, err)
	_, err = GetPreparedGetUserByID("u1")
	assert.Error(t, err)
	_, err = GetPreparedInsertUser("u1", "alice", "alice@example.com", "", "", "", "local", "customer", time.Now(), time.Now())
	assert.Error(t, err)
	_, err = GetPreparedInsertUserByEmail("alice@example.com", "u1")
	assert.Error(t, err)
	_, err = GetPreparedInsertUserByUsername("alice", "u1")
	assert.Error(t, err)
	_, err = GetPreparedDeleteUserByEmail("alice@example.com")
	assert.Error(t, err)
	_, err = GetPreparedUpdateUser("alice", "", "", time.Now(), "u1")
	assert.Error(t, err)

	// Sans keyspace configuré, l'init journalise et n'échoue pas
	InitPreparedStatements()
}

func TestUniquenessReservationsAreLWT(t *testing.T) {
	// Les réservations email/username doivent rester conditionnelles :
	// sans IF NOT EXISTS, deux inscriptions concurrentes sur le même
	// email réussiraient toutes les deux.
	assert.Contains(t, stmtInsertUserByEmail, "IF NOT EXISTS")
	assert.Contains(t, stmtInsertUserByUsername, "IF NOT EXISTS")
}
