package database

import (
	"database/sql"
	"time"
)

func (db *PgDmHubRepository) CreateAccount(params CreateAccountParams) (User, error) {
	res := db.conn.QueryRow(
		"INSERT INTO accounts (username, display_name, email, password_hash, created_at) "+
			"VALUES ($1, $2, $3, $4, $5) RETURNING id, username, display_name, email",
		params.Username,
		params.DisplayName,
		params.EmailAddress,
		params.PasswordHash,
		time.Now().UTC(),
	)

	var u User
	err := res.Scan(
		&u.Id,
		&u.Username,
		&u.DisplayName,
		&u.EmailAddress,
	)

	return u, err
}

func (db *PgDmHubRepository) GetAccountById(accountId int) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, display_name, email, created_at, updated_at FROM accounts "+
			"WHERE id = $1 LIMIT 1",
		accountId,
	)

	var user User
	err := row.Scan(
		&user.Id,
		&user.Username,
		&user.DisplayName,
		&user.EmailAddress,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	return user, err
}

func (db *PgDmHubRepository) GetAccountByEmail(email string) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, display_name, email, password_hash FROM accounts "+
			"WHERE email = $1 LIMIT 1",
		email,
	)

	var user User
	err := row.Scan(
		&user.Id,
		&user.Username,
		&user.DisplayName,
		&user.EmailAddress,
		&user.PasswordHash,
	)

	return user, err
}

func (db *PgDmHubRepository) GetUserByUsername(username string) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, display_name, email FROM accounts "+
			"WHERE lower(username) = lower($1) LIMIT 1",
		username,
	)

	var user User
	err := row.Scan(
		&user.Id,
		&user.Username,
		&user.DisplayName,
		&user.EmailAddress,
	)

	return user, err
}

func (db *PgDmHubRepository) ListUsers() ([]User, error) {
	rows, err := db.conn.Query(
		"SELECT id, username, display_name FROM accounts ORDER BY username",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.Id, &u.Username, &u.DisplayName); err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

func (db *PgDmHubRepository) GetMessageThread(userA, userB string) ([]Message, error) {
	rows, err := db.conn.Query(
		"SELECT id, external_id, sender_username, recipient_username, content, created_at, read_at "+
			"FROM messages WHERE (sender_username = $1 AND recipient_username = $2) "+
			"OR (sender_username = $2 AND recipient_username = $1) ORDER BY created_at, id",
		userA,
		userB,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(
			&m.Id,
			&m.ExternalId,
			&m.SenderUsername,
			&m.RecipientUsername,
			&m.Content,
			&m.CreatedAt,
			&m.ReadAt,
		); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}

	return messages, rows.Err()
}

func (db *PgDmHubRepository) GetMessageGroup(name string) (*Group, error) {
	row := db.conn.QueryRow(
		"SELECT id, name, created_at FROM groups WHERE name = $1 LIMIT 1",
		name,
	)

	var group Group
	if err := row.Scan(&group.Id, &group.Name, &group.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	conns, err := db.getGroupConnections(group.Id)
	if err != nil {
		return nil, err
	}
	group.Connections = conns

	return &group, nil
}

func (db *PgDmHubRepository) GetGroupForConnection(connectionId string) (*Group, error) {
	row := db.conn.QueryRow(
		"SELECT g.id, g.name, g.created_at FROM groups g "+
			"JOIN connections c ON c.group_id = g.id "+
			"WHERE c.connection_id = $1 LIMIT 1",
		connectionId,
	)

	var group Group
	if err := row.Scan(&group.Id, &group.Name, &group.CreatedAt); err != nil {
		return nil, err
	}

	conns, err := db.getGroupConnections(group.Id)
	if err != nil {
		return nil, err
	}
	group.Connections = conns

	return &group, nil
}

// AddGroup is an insert-or-fetch on the group name so that two concurrent
// first-joins for the same conversation converge on a single row.
func (db *PgDmHubRepository) AddGroup(name string) (*Group, error) {
	if _, err := db.conn.Exec(
		"INSERT INTO groups (name, created_at) VALUES ($1, $2) "+
			"ON CONFLICT (name) DO NOTHING",
		name,
		time.Now().UTC(),
	); err != nil {
		return nil, err
	}

	return db.GetMessageGroup(name)
}

func (db *PgDmHubRepository) AddConnection(groupName string, conn Connection) error {
	res, err := db.conn.Exec(
		"INSERT INTO connections (connection_id, username, group_id, created_at) "+
			"SELECT $1, $2, g.id, $3 FROM groups g WHERE g.name = $4",
		conn.Id,
		conn.Username,
		time.Now().UTC(),
		groupName,
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (db *PgDmHubRepository) RemoveConnection(connectionId string) error {
	res, err := db.conn.Exec(
		"DELETE FROM connections WHERE connection_id = $1",
		connectionId,
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (db *PgDmHubRepository) AddMessage(msg Message) (Message, error) {
	row := db.conn.QueryRow(
		"INSERT INTO messages (external_id, sender_username, recipient_username, content, created_at, read_at) "+
			"VALUES ($1, $2, $3, $4, $5, $6) RETURNING id",
		msg.ExternalId,
		msg.SenderUsername,
		msg.RecipientUsername,
		msg.Content,
		msg.CreatedAt,
		msg.ReadAt,
	)

	err := row.Scan(&msg.Id)

	return msg, err
}

func (db *PgDmHubRepository) getGroupConnections(groupId int) ([]Connection, error) {
	rows, err := db.conn.Query(
		"SELECT connection_id, username FROM connections WHERE group_id = $1 "+
			"ORDER BY created_at, connection_id",
		groupId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conns []Connection
	for rows.Next() {
		var c Connection
		if err := rows.Scan(&c.Id, &c.Username); err != nil {
			return nil, err
		}
		conns = append(conns, c)
	}

	return conns, rows.Err()
}
