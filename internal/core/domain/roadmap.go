package domain

import (
	"encoding/json"
	"time"
)

// Roadmap is a saved generation result owned by a single account. The
// RoadmapData payload is whatever the client sent back after generation; its
// shape is not validated here.
type Roadmap struct {
	ID          string          `json:"id" bson:"_id"`
	UserID      string          `json:"user_id" bson:"user_id"`
	Title       string          `json:"title" bson:"title"`
	UserGoal    string          `json:"user_goal" bson:"user_goal"`
	SkillLevel  string          `json:"skill_level" bson:"skill_level"`
	RoadmapData json.RawMessage `json:"roadmap_data" bson:"roadmap_data"`
	CreatedAt   time.Time       `json:"created_at" bson:"created_at"`
}
