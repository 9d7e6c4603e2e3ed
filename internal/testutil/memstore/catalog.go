package memstore

import (
	"ecosignal.fr/rewards/internal/features/badges"
	"ecosignal.fr/rewards/internal/features/levels"
)

func icon(s string) *string { return &s }

// SeedCatalog loads the default badges and levels shipped by the migrations.
func (s *Store) SeedCatalog() {
	for _, b := range []badges.Badge{
		{Code: "FIRST_REPORT", Name: "Premier Pas", Icon: icon("🌱"), Category: "reports", ConditionType: badges.ConditionReportsCount, ConditionValue: 1, PointsReward: 5},
		{Code: "REPORTER_10", Name: "Éco-Citoyen", Icon: icon("🌿"), Category: "reports", ConditionType: badges.ConditionReportsCount, ConditionValue: 10, PointsReward: 20},
		{Code: "REPORTER_50", Name: "Gardien Vert", Icon: icon("🌳"), Category: "reports", ConditionType: badges.ConditionReportsCount, ConditionValue: 50, PointsReward: 50},
		{Code: "REPORTER_100", Name: "Champion Écologique", Icon: icon("🏆"), Category: "reports", ConditionType: badges.ConditionReportsCount, ConditionValue: 100, PointsReward: 100},
		{Code: "POINTS_100", Name: "Collectionneur Bronze", Icon: icon("🥉"), Category: "points", ConditionType: badges.ConditionPointsTotal, ConditionValue: 100, PointsReward: 10},
		{Code: "POINTS_500", Name: "Collectionneur Argent", Icon: icon("🥈"), Category: "points", ConditionType: badges.ConditionPointsTotal, ConditionValue: 500, PointsReward: 25},
		{Code: "POINTS_1000", Name: "Collectionneur Or", Icon: icon("🥇"), Category: "points", ConditionType: badges.ConditionPointsTotal, ConditionValue: 1000, PointsReward: 50},
		{Code: "EARLY_ADOPTER", Name: "Pionnier", Icon: icon("⭐"), Category: "special", ConditionType: badges.ConditionManual, ConditionValue: 0, PointsReward: 50},
		{Code: "STREAK_7", Name: "Régularité", Icon: icon("🔥"), Category: "streak", ConditionType: badges.ConditionStreakDays, ConditionValue: 7, PointsReward: 30},
	} {
		b.IsActive = true
		s.AddBadge(b)
	}

	for _, l := range []levels.Level{
		{LevelNumber: 1, Name: "Débutant", MinPoints: 0, Icon: icon("🌱")},
		{LevelNumber: 2, Name: "Apprenti", MinPoints: 50, Icon: icon("🌿")},
		{LevelNumber: 3, Name: "Éco-Citoyen", MinPoints: 150, Icon: icon("🌳")},
		{LevelNumber: 4, Name: "Protecteur", MinPoints: 300, Icon: icon("🛡️")},
		{LevelNumber: 5, Name: "Gardien", MinPoints: 500, Icon: icon("🦸")},
		{LevelNumber: 6, Name: "Champion", MinPoints: 800, Icon: icon("🏅")},
		{LevelNumber: 7, Name: "Héros", MinPoints: 1200, Icon: icon("🏆")},
		{LevelNumber: 8, Name: "Légende", MinPoints: 2000, Icon: icon("👑")},
	} {
		s.AddLevel(l)
	}
}
