package database

import (
	"log"
	"sync"
	"time"

	"github.com/gocql/gocql"
)

// Textes CQL des requêtes utilisateur chaudes. gocql prépare chaque
// texte une seule fois par session puis réutilise le prepared statement
// côté serveur à chaque exécution du même texte ; les accesseurs
// rendent une gocql.Query fraîche, jamais partagée entre goroutines.
const (
	stmtGetUserByEmail = "SELECT user_id FROM users_by_email WHERE email = ?"
	stmtGetUserByID    = `SELECT username, email, password, address, phone, provider, role, created_at, updated_at
		FROM users WHERE user_id = ?`
	stmtInsertUser = `INSERT INTO users (user_id, username, email, password, address, phone, provider, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	// IF NOT EXISTS : la réservation de l'email et du nom d'utilisateur
	// est atomique côté cluster (LWT), deux inscriptions concurrentes ne
	// peuvent jamais réussir toutes les deux.
	stmtInsertUserByEmail    = "INSERT INTO users_by_email (email, user_id) VALUES (?, ?) IF NOT EXISTS"
	stmtInsertUserByUsername = "INSERT INTO users_by_username (username, user_id) VALUES (?, ?) IF NOT EXISTS"
	stmtDeleteUserByEmail    = "DELETE FROM users_by_email WHERE email = ?"
	stmtUpdateUser           = "UPDATE users SET username = ?, address = ?, phone = ?, updated_at = ? WHERE user_id = ?"
)

var preparedOnce sync.Once

// InitPreparedStatements pré-chauffe la session users au démarrage pour
// que la première inscription ne paie pas le coût de connexion.
func InitPreparedStatements() {
	preparedOnce.Do(func() {
		if _, err := GetUsersSession(); err != nil {
			log.Printf("⚠️ Impossible d'initialiser les prepared statements: %v", err)
			return
		}
		log.Println("✅ Prepared statements initialisés")
	})
}

func usersQuery(stmt string, values ...interface{}) (*gocql.Query, error) {
	session, err := GetUsersSession()
	if err != nil {
		return nil, err
	}
	return session.Query(stmt, values...), nil
}

func GetPreparedGetUserByEmail(email string) (*gocql.Query, error) {
	return usersQuery(stmtGetUserByEmail, email)
}

func GetPreparedGetUserByID(id string) (*gocql.Query, error) {
	return usersQuery(stmtGetUserByID, id)
}

func GetPreparedInsertUser(id, username, email, password, address, phone, provider, role string, createdAt, updatedAt time.Time) (*gocql.Query, error) {
	return usersQuery(stmtInsertUser, id, username, email, password, address, phone, provider, role, createdAt, updatedAt)
}

func GetPreparedInsertUserByEmail(email, userID string) (*gocql.Query, error) {
	return usersQuery(stmtInsertUserByEmail, email, userID)
}

func GetPreparedInsertUserByUsername(username, userID string) (*gocql.Query, error) {
	return usersQuery(stmtInsertUserByUsername, username, userID)
}

func GetPreparedDeleteUserByEmail(email string) (*gocql.Query, error) {
	return usersQuery(stmtDeleteUserByEmail, email)
}

func GetPreparedUpdateUser(username, address, phone string, updatedAt time.Time, id string) (*gocql.Query, error) {
	return usersQuery(stmtUpdateUser, username, address, phone, updatedAt, id)
}
