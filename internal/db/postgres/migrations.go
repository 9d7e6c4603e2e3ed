// Package postgres - migrations.go embeds the SQL schema so deploys need no extra files.
package postgres

type migration struct {
	version int
	name    string
	sql     string
}

var migrations = []migration{
	{1, "users", migration001Users},
	{2, "containers_reports", migration002Reports},
	{3, "point_history", migration003PointHistory},
	{4, "rewards_system", migration004Rewards},
	{5, "gamification_analytics", migration005Analytics},
	{6, "default_badges_levels", migration006Catalog},
	{7, "admin_login_attempts", migration007AdminAttempts},
}

var migration001Users = `
CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    firstname VARCHAR(80) NOT NULL,
    lastname VARCHAR(80) NOT NULL,
    email VARCHAR(255) UNIQUE NOT NULL,
    password_hash VARCHAR(255) NOT NULL,
    role VARCHAR(20) NOT NULL DEFAULT 'user',
    points INTEGER NOT NULL DEFAULT 0 CHECK (points >= 0),
    level INTEGER NOT NULL DEFAULT 1 CHECK (level >= 1),
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

var migration002Reports = `
CREATE TABLE IF NOT EXISTS containers (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    type VARCHAR(30) NOT NULL,
    status VARCHAR(30) NOT NULL DEFAULT 'vide',
    latitude DOUBLE PRECISION NOT NULL,
    longitude DOUBLE PRECISION NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS reports (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    container_id UUID NOT NULL REFERENCES containers(id) ON DELETE CASCADE,
    type VARCHAR(30) NOT NULL DEFAULT 'CONTENEUR_PLEIN',
    latitude DOUBLE PRECISION NOT NULL,
    longitude DOUBLE PRECISION NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'pending'
        CHECK (status IN ('pending', 'validated', 'rejected')),
    validated_at TIMESTAMPTZ,
    validated_by UUID REFERENCES users(id),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_reports_user_status ON reports(user_id, status);
`

var migration003PointHistory = `
CREATE TABLE IF NOT EXISTS point_history (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    points INTEGER NOT NULL CHECK (points <> 0),
    reason VARCHAR(30) NOT NULL
        CHECK (reason IN ('report_validated', 'bonus', 'penalty', 'other')),
    description VARCHAR(255),
    reference_id UUID,
    reference_type VARCHAR(50),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_point_history_user_id ON point_history(user_id);
CREATE INDEX IF NOT EXISTS idx_point_history_created_at ON point_history(created_at DESC);
`

var migration004Rewards = `
CREATE TABLE IF NOT EXISTS badges (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    code VARCHAR(50) UNIQUE NOT NULL,
    name VARCHAR(100) NOT NULL,
    description VARCHAR(255) NOT NULL,
    icon VARCHAR(100),
    category VARCHAR(50) NOT NULL DEFAULT 'general',
    condition_type VARCHAR(30) NOT NULL
        CHECK (condition_type IN ('reports_count', 'points_total', 'streak_days', 'manual')),
    condition_value INTEGER NOT NULL,
    points_reward INTEGER NOT NULL DEFAULT 0 CHECK (points_reward >= 0),
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS user_badges (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    badge_id UUID NOT NULL REFERENCES badges(id) ON DELETE CASCADE,
    earned_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_user_badges_unique ON user_badges(user_id, badge_id);
CREATE TABLE IF NOT EXISTS levels (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    level_number INTEGER UNIQUE NOT NULL CHECK (level_number >= 1),
    name VARCHAR(100) NOT NULL,
    min_points INTEGER NOT NULL CHECK (min_points >= 0),
    icon VARCHAR(100),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS reward_history (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    reward_type VARCHAR(20) NOT NULL CHECK (reward_type IN ('badge', 'level_up', 'bonus')),
    reward_id UUID,
    description VARCHAR(255) NOT NULL,
    metadata JSONB,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_reward_history_user_id ON reward_history(user_id);
`

var migration005Analytics = `
CREATE TABLE IF NOT EXISTS gamification_analytics (
    id UUID PRIMARY KEY,
    user_id UUID REFERENCES users(id) ON DELETE SET NULL,
    event_type VARCHAR(50) NOT NULL,
    event_category VARCHAR(30) NOT NULL DEFAULT 'gamification',
    event_data JSONB,
    points_value INTEGER,
    badge_code VARCHAR(50),
    level_reached INTEGER,
    source VARCHAR(30) NOT NULL DEFAULT 'backend',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_analytics_user_event ON gamification_analytics(user_id, event_type);
CREATE INDEX IF NOT EXISTS idx_analytics_event_type ON gamification_analytics(event_type);
CREATE INDEX IF NOT EXISTS idx_analytics_created_at ON gamification_analytics(created_at);
`

var migration006Catalog = `
INSERT INTO badges (code, name, description, icon, category, condition_type, condition_value, points_reward) VALUES
    ('FIRST_REPORT', 'Premier Pas', 'Effectuer son premier signalement', '🌱', 'reports', 'reports_count', 1, 5),
    ('REPORTER_10', 'Éco-Citoyen', 'Effectuer 10 signalements validés', '🌿', 'reports', 'reports_count', 10, 20),
    ('REPORTER_50', 'Gardien Vert', 'Effectuer 50 signalements validés', '🌳', 'reports', 'reports_count', 50, 50),
    ('REPORTER_100', 'Champion Écologique', 'Effectuer 100 signalements validés', '🏆', 'reports', 'reports_count', 100, 100),
    ('POINTS_100', 'Collectionneur Bronze', 'Accumuler 100 points', '🥉', 'points', 'points_total', 100, 10),
    ('POINTS_500', 'Collectionneur Argent', 'Accumuler 500 points', '🥈', 'points', 'points_total', 500, 25),
    ('POINTS_1000', 'Collectionneur Or', 'Accumuler 1000 points', '🥇', 'points', 'points_total', 1000, 50),
    ('EARLY_ADOPTER', 'Pionnier', 'Faire partie des premiers utilisateurs', '⭐', 'special', 'manual', 0, 50),
    ('STREAK_7', 'Régularité', 'Signaler pendant 7 jours consécutifs', '🔥', 'streak', 'streak_days', 7, 30)
ON CONFLICT (code) DO NOTHING;

INSERT INTO levels (level_number, name, min_points, icon) VALUES
    (1, 'Débutant', 0, '🌱'),
    (2, 'Apprenti', 50, '🌿'),
    (3, 'Éco-Citoyen', 150, '🌳'),
    (4, 'Protecteur', 300, '🛡️'),
    (5, 'Gardien', 500, '🦸'),
    (6, 'Champion', 800, '🏅'),
    (7, 'Héros', 1200, '🏆'),
    (8, 'Légende', 2000, '👑')
ON CONFLICT (level_number) DO NOTHING;
`

var migration007AdminAttempts = `
CREATE TABLE IF NOT EXISTS admin_login_attempts (
    id BIGSERIAL PRIMARY KEY,
    operator_id UUID NOT NULL,
    success BOOLEAN NOT NULL,
    attempt_time TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_admin_attempts_operator ON admin_login_attempts(operator_id, attempt_time);
`
