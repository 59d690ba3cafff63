package db

import "context"

// Схема базы данных. Выполняется при старте, все операторы идемпотентны.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		email TEXT UNIQUE,
		password_hash TEXT,
		name TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		bio TEXT NOT NULL DEFAULT '',
		avatar_url TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		district TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'user',
		status TEXT NOT NULL DEFAULT 'active',
		rating REAL NOT NULL DEFAULT 0,
		total_trades INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		last_login_at TIMESTAMPTZ
	)`,

	`CREATE TABLE IF NOT EXISTS telegram_users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		telegram_id BIGINT NOT NULL UNIQUE,
		username TEXT NOT NULL DEFAULT '',
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		photo_url TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS items (
		id UUID PRIMARY KEY,
		owner_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL,
		condition TEXT NOT NULL,
		city TEXT NOT NULL DEFAULT '',
		district TEXT NOT NULL DEFAULT '',
		wanted_description TEXT NOT NULL DEFAULT '',
		wanted_categories JSONB NOT NULL DEFAULT '[]',
		images JSONB NOT NULL DEFAULT '[]',
		status TEXT NOT NULL DEFAULT 'active',
		views INTEGER NOT NULL DEFAULT 0,
		expires_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS items_category_status_idx ON items (category, status)`,
	`CREATE INDEX IF NOT EXISTS items_owner_status_idx ON items (owner_id, status)`,
	`CREATE INDEX IF NOT EXISTS items_city_district_idx ON items (city, district)`,

	`CREATE TABLE IF NOT EXISTS favorites (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		item_id UUID NOT NULL REFERENCES items(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (user_id, item_id)
	)`,

	`CREATE TABLE IF NOT EXISTS offers (
		id UUID PRIMARY KEY,
		item_id UUID NOT NULL REFERENCES items(id) ON DELETE CASCADE,
		offered_by UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		offered_to UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		offered_items JSONB NOT NULL DEFAULT '[]',
		message TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		response_message TEXT NOT NULL DEFAULT '',
		meeting_location TEXT NOT NULL DEFAULT '',
		meeting_date TIMESTAMPTZ,
		meeting_notes TEXT NOT NULL DEFAULT '',
		expires_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS offers_item_status_idx ON offers (item_id, status)`,
	`CREATE INDEX IF NOT EXISTS offers_offered_by_status_idx ON offers (offered_by, status)`,
	`CREATE INDEX IF NOT EXISTS offers_offered_to_status_idx ON offers (offered_to, status)`,
	// Гарантия инварианта: не более одного pending-предложения от пользователя на вещь
	`CREATE UNIQUE INDEX IF NOT EXISTS offers_pending_unique_idx
		ON offers (item_id, offered_by) WHERE status = 'pending'`,

	// Чат один на предложение, создается при принятии предложения
	`CREATE TABLE IF NOT EXISTS chats (
		id UUID PRIMARY KEY,
		offer_id UUID NOT NULL UNIQUE REFERENCES offers(id) ON DELETE CASCADE,
		offered_by UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		offered_to UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS messages (
		id UUID PRIMARY KEY,
		chat_id UUID NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
		sender_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		content TEXT NOT NULL,
		is_read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS messages_chat_created_idx ON messages (chat_id, created_at)`,

	`CREATE TABLE IF NOT EXISTS reports (
		id UUID PRIMARY KEY,
		reported_by UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		report_type TEXT NOT NULL,
		target_type TEXT NOT NULL,
		target_id UUID NOT NULL,
		description TEXT NOT NULL,
		evidence JSONB NOT NULL DEFAULT '[]',
		chat_history TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		admin_notes TEXT NOT NULL DEFAULT '',
		action_taken TEXT NOT NULL DEFAULT 'none',
		resolved_by UUID REFERENCES users(id),
		resolved_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS reports_status_created_idx ON reports (status, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS reports_target_idx ON reports (target_type, target_id)`,
	// Повторная жалоба от того же пользователя на тот же объект не допускается,
	// пока предыдущая не рассмотрена
	`CREATE UNIQUE INDEX IF NOT EXISTS reports_open_unique_idx
		ON reports (reported_by, target_type, target_id)
		WHERE status IN ('pending', 'investigating')`,
}

// applySchema выполняет все операторы схемы по порядку
func applySchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := Pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
