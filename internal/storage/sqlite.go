package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kizunaapp/kizuna/internal/domain"
	"github.com/kizunaapp/kizuna/internal/notify"

	_ "github.com/mattn/go-sqlite3"
)

type Storage struct {
	db *sql.DB
}

func New(dbPath string) (*Storage, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	s := &Storage{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS contacts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			first_name TEXT NOT NULL,
			last_name TEXT DEFAULT '',
			category TEXT NOT NULL DEFAULT 'private',
			birthday DATE,
			email TEXT DEFAULT '',
			phone TEXT DEFAULT '',
			notes TEXT DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_contacts_birthday ON contacts(birthday)`,
		`CREATE INDEX IF NOT EXISTS idx_contacts_category ON contacts(category)`,
		`CREATE TABLE IF NOT EXISTS groups (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT 'private',
			description TEXT DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS group_members (
			group_id INTEGER NOT NULL,
			contact_id INTEGER NOT NULL,
			PRIMARY KEY (group_id, contact_id),
			FOREIGN KEY (group_id) REFERENCES groups(id) ON DELETE CASCADE,
			FOREIGN KEY (contact_id) REFERENCES contacts(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS communications (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			contact_id INTEGER NOT NULL,
			type TEXT NOT NULL,
			date DATETIME NOT NULL,
			notes TEXT DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (contact_id) REFERENCES contacts(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_communications_contact ON communications(contact_id)`,
		`CREATE INDEX IF NOT EXISTS idx_communications_date ON communications(date)`,
		`CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			details TEXT DEFAULT '',
			location TEXT DEFAULT '',
			start_at DATETIME NOT NULL,
			end_at DATETIME,
			all_day INTEGER DEFAULT 0,
			reminder_offset INTEGER,
			group_id INTEGER REFERENCES groups(id) ON DELETE SET NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_start ON events(start_at)`,
		`CREATE INDEX IF NOT EXISTS idx_events_group ON events(group_id)`,
		`CREATE TABLE IF NOT EXISTS event_participants (
			event_id INTEGER NOT NULL,
			contact_id INTEGER NOT NULL,
			PRIMARY KEY (event_id, contact_id),
			FOREIGN KEY (event_id) REFERENCES events(id) ON DELETE CASCADE,
			FOREIGN KEY (contact_id) REFERENCES contacts(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS reminders (
			id TEXT PRIMARY KEY,
			trigger_at DATETIME NOT NULL,
			title TEXT NOT NULL,
			body TEXT DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reminders_trigger ON reminders(trigger_at)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}

// === Contacts ===

func (s *Storage) CreateContact(c *domain.Contact) error {
	res, err := s.db.Exec(
		`INSERT INTO contacts (first_name, last_name, category, birthday, email, phone, notes) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.FirstName, c.LastName, c.Category, c.Birthday, c.Email, c.Phone, c.Notes,
	)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	c.ID = id
	c.CreatedAt = time.Now()
	return nil
}

func (s *Storage) GetContact(id int64) (*domain.Contact, error) {
	c := &domain.Contact{}
	err := s.db.QueryRow(
		`SELECT id, first_name, last_name, category, birthday, email, phone, notes, created_at, updated_at
		 FROM contacts WHERE id = ?`,
		id,
	).Scan(&c.ID, &c.FirstName, &c.LastName, &c.Category, &c.Birthday, &c.Email, &c.Phone, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}

func (s *Storage) UpdateContact(c *domain.Contact) error {
	_, err := s.db.Exec(
		`UPDATE contacts SET first_name = ?, last_name = ?, category = ?, birthday = ?, email = ?, phone = ?, notes = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		c.FirstName, c.LastName, c.Category, c.Birthday, c.Email, c.Phone, c.Notes, c.ID,
	)
	return err
}

func (s *Storage) DeleteContact(id int64) error {
	_, err := s.db.Exec(`DELETE FROM contacts WHERE id = ?`, id)
	return err
}

func (s *Storage) ListContacts() ([]*domain.Contact, error) {
	return s.queryContacts(`SELECT id, first_name, last_name, category, birthday, email, phone, notes, created_at, updated_at
		FROM contacts ORDER BY last_name, first_name`)
}

// ListContactsWithBirthday returns contacts whose birth date is known
func (s *Storage) ListContactsWithBirthday() ([]*domain.Contact, error) {
	return s.queryContacts(`SELECT id, first_name, last_name, category, birthday, email, phone, notes, created_at, updated_at
		FROM contacts WHERE birthday IS NOT NULL ORDER BY last_name, first_name`)
}

func (s *Storage) queryContacts(query string, args ...any) ([]*domain.Contact, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []*domain.Contact
	for rows.Next() {
		c := &domain.Contact{}
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Category, &c.Birthday, &c.Email, &c.Phone, &c.Notes, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// === Groups ===

func (s *Storage) CreateGroup(g *domain.Group) error {
	res, err := s.db.Exec(
		`INSERT INTO groups (name, category, description) VALUES (?, ?, ?)`,
		g.Name, g.Category, g.Description,
	)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	g.ID = id
	g.CreatedAt = time.Now()
	return nil
}

func (s *Storage) GetGroup(id int64) (*domain.Group, error) {
	g := &domain.Group{}
	err := s.db.QueryRow(
		`SELECT id, name, category, description, created_at FROM groups WHERE id = ?`,
		id,
	).Scan(&g.ID, &g.Name, &g.Category, &g.Description, &g.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return g, err
}

func (s *Storage) UpdateGroup(g *domain.Group) error {
	_, err := s.db.Exec(
		`UPDATE groups SET name = ?, category = ?, description = ? WHERE id = ?`,
		g.Name, g.Category, g.Description, g.ID,
	)
	return err
}

func (s *Storage) DeleteGroup(id int64) error {
	_, err := s.db.Exec(`DELETE FROM groups WHERE id = ?`, id)
	return err
}

func (s *Storage) ListGroups() ([]*domain.Group, error) {
	rows, err := s.db.Query(`SELECT id, name, category, description, created_at FROM groups ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []*domain.Group
	for rows.Next() {
		g := &domain.Group{}
		if err := rows.Scan(&g.ID, &g.Name, &g.Category, &g.Description, &g.CreatedAt); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (s *Storage) AddGroupMember(groupID, contactID int64) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO group_members (group_id, contact_id) VALUES (?, ?)`,
		groupID, contactID,
	)
	return err
}

func (s *Storage) RemoveGroupMember(groupID, contactID int64) error {
	_, err := s.db.Exec(
		`DELETE FROM group_members WHERE group_id = ? AND contact_id = ?`,
		groupID, contactID,
	)
	return err
}

func (s *Storage) ListGroupMembers(groupID int64) ([]*domain.Contact, error) {
	return s.queryContacts(`SELECT c.id, c.first_name, c.last_name, c.category, c.birthday, c.email, c.phone, c.notes, c.created_at, c.updated_at
		FROM contacts c
		JOIN group_members gm ON gm.contact_id = c.id
		WHERE gm.group_id = ?
		ORDER BY c.last_name, c.first_name`, groupID)
}

// === Communications ===

func (s *Storage) CreateCommunication(c *domain.Communication) error {
	res, err := s.db.Exec(
		`INSERT INTO communications (contact_id, type, date, notes) VALUES (?, ?, ?, ?)`,
		c.ContactID, c.Type, c.Date, c.Notes,
	)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	c.ID = id
	c.CreatedAt = time.Now()
	return nil
}

func (s *Storage) DeleteCommunication(id int64) error {
	_, err := s.db.Exec(`DELETE FROM communications WHERE id = ?`, id)
	return err
}

func (s *Storage) ListCommunicationsByContact(contactID int64) ([]*domain.Communication, error) {
	return s.queryCommunications(
		`SELECT id, contact_id, type, date, notes, created_at FROM communications WHERE contact_id = ? ORDER BY date DESC`,
		contactID,
	)
}

// ListRecentCommunications returns the latest entries across all contacts
func (s *Storage) ListRecentCommunications(limit int) ([]*domain.Communication, error) {
	return s.queryCommunications(
		`SELECT id, contact_id, type, date, notes, created_at FROM communications ORDER BY date DESC LIMIT ?`,
		limit,
	)
}

func (s *Storage) queryCommunications(query string, args ...any) ([]*domain.Communication, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comms []*domain.Communication
	for rows.Next() {
		c := &domain.Communication{}
		if err := rows.Scan(&c.ID, &c.ContactID, &c.Type, &c.Date, &c.Notes, &c.CreatedAt); err != nil {
			return nil, err
		}
		comms = append(comms, c)
	}
	return comms, rows.Err()
}

// === Events ===

func (s *Storage) CreateEvent(e *domain.CalendarEvent) error {
	res, err := s.db.Exec(
		`INSERT INTO events (title, details, location, start_at, end_at, all_day, reminder_offset, group_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Title, e.Details, e.Location, e.StartAt, nullableTime(e.EndAt), e.AllDay, e.ReminderOffset, e.GroupID,
	)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	e.ID = id
	e.CreatedAt = time.Now()

	return s.setParticipants(e.ID, e.ParticipantIDs)
}

func (s *Storage) GetEvent(id int64) (*domain.CalendarEvent, error) {
	e := &domain.CalendarEvent{}
	var endAt sql.NullTime
	err := s.db.QueryRow(
		`SELECT id, title, details, location, start_at, end_at, all_day, reminder_offset, group_id, created_at, updated_at
		 FROM events WHERE id = ?`,
		id,
	).Scan(&e.ID, &e.Title, &e.Details, &e.Location, &e.StartAt, &endAt, &e.AllDay, &e.ReminderOffset, &e.GroupID, &e.CreatedAt, &e.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if endAt.Valid {
		e.EndAt = endAt.Time
	}

	e.ParticipantIDs, err = s.listParticipantIDs(e.ID)
	return e, err
}

func (s *Storage) UpdateEvent(e *domain.CalendarEvent) error {
	_, err := s.db.Exec(
		`UPDATE events SET title = ?, details = ?, location = ?, start_at = ?, end_at = ?, all_day = ?, reminder_offset = ?, group_id = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		e.Title, e.Details, e.Location, e.StartAt, nullableTime(e.EndAt), e.AllDay, e.ReminderOffset, e.GroupID, e.ID,
	)
	if err != nil {
		return err
	}
	return s.setParticipants(e.ID, e.ParticipantIDs)
}

func (s *Storage) DeleteEvent(id int64) error {
	_, err := s.db.Exec(`DELETE FROM events WHERE id = ?`, id)
	return err
}

func (s *Storage) ListEvents() ([]*domain.CalendarEvent, error) {
	return s.queryEvents(`SELECT id, title, details, location, start_at, end_at, all_day, reminder_offset, group_id, created_at, updated_at
		FROM events ORDER BY start_at, id`)
}

func (s *Storage) ListEventsInRange(from, to time.Time) ([]*domain.CalendarEvent, error) {
	return s.queryEvents(`SELECT id, title, details, location, start_at, end_at, all_day, reminder_offset, group_id, created_at, updated_at
		FROM events WHERE start_at >= ? AND start_at < ? ORDER BY start_at, id`, from, to)
}

func (s *Storage) ListEventsForContact(contactID int64) ([]*domain.CalendarEvent, error) {
	return s.queryEvents(`SELECT e.id, e.title, e.details, e.location, e.start_at, e.end_at, e.all_day, e.reminder_offset, e.group_id, e.created_at, e.updated_at
		FROM events e
		JOIN event_participants ep ON ep.event_id = e.id
		WHERE ep.contact_id = ?
		ORDER BY e.start_at, e.id`, contactID)
}

func (s *Storage) ListEventsForGroup(groupID int64) ([]*domain.CalendarEvent, error) {
	return s.queryEvents(`SELECT id, title, details, location, start_at, end_at, all_day, reminder_offset, group_id, created_at, updated_at
		FROM events WHERE group_id = ? ORDER BY start_at, id`, groupID)
}

func (s *Storage) queryEvents(query string, args ...any) ([]*domain.CalendarEvent, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.CalendarEvent
	for rows.Next() {
		e := &domain.CalendarEvent{}
		var endAt sql.NullTime
		if err := rows.Scan(&e.ID, &e.Title, &e.Details, &e.Location, &e.StartAt, &endAt, &e.AllDay, &e.ReminderOffset, &e.GroupID, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		if endAt.Valid {
			e.EndAt = endAt.Time
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, e := range events {
		ids, err := s.listParticipantIDs(e.ID)
		if err != nil {
			return nil, err
		}
		e.ParticipantIDs = ids
	}
	return events, nil
}

func (s *Storage) setParticipants(eventID int64, contactIDs []int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM event_participants WHERE event_id = ?`, eventID); err != nil {
		return err
	}
	for _, cid := range contactIDs {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO event_participants (event_id, contact_id) VALUES (?, ?)`, eventID, cid); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Storage) listParticipantIDs(eventID int64) ([]int64, error) {
	rows, err := s.db.Query(`SELECT contact_id FROM event_participants WHERE event_id = ? ORDER BY contact_id`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// === Reminders (notify backend) ===

// SaveReminder upserts on the request id, so replacing an event's
// reminder is a single atomic statement.
func (s *Storage) SaveReminder(req notify.Request) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO reminders (id, trigger_at, title, body) VALUES (?, ?, ?, ?)`,
		req.ID, req.TriggerAt, req.Title, req.Body,
	)
	return err
}

func (s *Storage) DeleteReminder(id string) error {
	_, err := s.db.Exec(`DELETE FROM reminders WHERE id = ?`, id)
	return err
}

func (s *Storage) ListReminders() ([]notify.Request, error) {
	rows, err := s.db.Query(`SELECT id, trigger_at, title, body FROM reminders ORDER BY trigger_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []notify.Request
	for rows.Next() {
		var r notify.Request
		if err := rows.Scan(&r.ID, &r.TriggerAt, &r.Title, &r.Body); err != nil {
			return nil, err
		}
		reqs = append(reqs, r)
	}
	return reqs, rows.Err()
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
