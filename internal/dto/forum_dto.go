package dto

import "github.com/google/uuid"

type CreateTopicRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

type CreatePostRequest struct {
	Content  string     `json:"content"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
}

type VoteRequest struct {
	Type string `json:"type"`
}

type SessionStateRequest struct {
	Section       string     `json:"section"`
	ActiveTopicID *uuid.UUID `json:"active_topic_id,omitempty"`
	ActivePostID  *uuid.UUID `json:"active_post_id,omitempty"`
}

type TopicQuery struct {
	Category string
	Page     int
	Limit    int
}
