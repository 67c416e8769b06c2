package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/notify"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/permissions"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxVoteAttempts = 3

// errStaleCounters signals that the counters changed between read and write.
var errStaleCounters = errors.New("stale vote counters")

const (
	msgVoteAdded   = "Vote added"
	msgVoteRemoved = "Vote removed"
	msgVoteChanged = "Vote changed"
)

// tally is a positive/negative counter pair: upvotes/downvotes on a topic,
// likes/dislikes on a post.
type tally struct {
	Pos int
	Neg int
}

// transition applies the toggle table. current is the stored vote ("" for
// none). With floor set, a fresh negative vote that would take the score
// below zero is refused. Counters never go below zero.
func transition(current, requested, pos, neg string, t tally, floor bool) (tally, string, string, error) {
	if requested != pos && requested != neg {
		return t, current, "", ErrInvalidVoteType
	}

	switch {
	case current == "":
		if requested == pos {
			t.Pos++
			return t, requested, msgVoteAdded, nil
		}
		if floor && t.Pos-(t.Neg+1) < 0 {
			return t, current, "", ErrVoteWouldBeNegative
		}
		t.Neg++
		return t, requested, msgVoteAdded, nil

	case current == requested:
		if requested == pos {
			t.Pos = decrement(t.Pos)
		} else {
			t.Neg = decrement(t.Neg)
		}
		return t, "", msgVoteRemoved, nil

	default:
		if requested == pos {
			t.Neg = decrement(t.Neg)
			t.Pos++
		} else {
			t.Pos = decrement(t.Pos)
			t.Neg++
		}
		return t, requested, msgVoteChanged, nil
	}
}

func decrement(n int) int {
	if n <= 0 {
		return 0
	}
	return n - 1
}

type TopicVoteResult struct {
	Topic   *models.Topic `json:"topic"`
	Vote    string        `json:"vote"`
	Message string        `json:"message"`
}

type PostVoteResult struct {
	Post    *models.Post `json:"post"`
	Vote    string       `json:"vote"`
	Message string       `json:"message"`
}

type VoteService struct {
	db     *gorm.DB
	events EventPublisher
	now    func() time.Time
}

func NewVoteService(db *gorm.DB, events EventPublisher) *VoteService {
	return &VoteService{
		db:     db,
		events: publisherOrDiscard(events),
		now:    time.Now,
	}
}

// ApplyVote casts, changes or withdraws actor's vote on a topic. The topic
// counters and the vote record are written in one transaction; a concurrent
// change to the counters is retried a bounded number of times.
func (s *VoteService) ApplyVote(forumID string, actor *Actor, topicID uuid.UUID, voteType string) (*TopicVoteResult, error) {
	var result *TopicVoteResult
	var err error
	for attempt := 0; attempt < maxVoteAttempts; attempt++ {
		result, err = s.applyTopicVote(forumID, actor, topicID, voteType)
		if !errors.Is(err, errStaleCounters) {
			break
		}
	}
	if errors.Is(err, errStaleCounters) {
		return nil, ErrVoteConflict
	}
	if err != nil {
		return nil, err
	}

	s.events.Publish(newEvent(notify.TopicVoted, forumID, map[string]interface{}{
		"topic_id":  result.Topic.ID,
		"upvotes":   result.Topic.Upvotes,
		"downvotes": result.Topic.Downvotes,
	}, s.now().UTC()))
	return result, nil
}

func (s *VoteService) applyTopicVote(forumID string, actor *Actor, topicID uuid.UUID, voteType string) (*TopicVoteResult, error) {
	var result TopicVoteResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := authorize(tx, forumID, actor, permissions.VoteTopics); err != nil {
			return err
		}

		var topic models.Topic
		err := tx.Scopes(tenant.ForTenant(forumID)).Where("id = ?", topicID).First(&topic).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("topic")
		}
		if err != nil {
			return err
		}
		if err := hiddenFrom(tx, forumID, actor, topic.AuthorUsername, "topic"); err != nil {
			return err
		}

		var existing []models.TopicVote
		if err := tx.Where("user_id = ? AND topic_id = ?", actor.ID, topicID).Limit(1).Find(&existing).Error; err != nil {
			return err
		}
		current := ""
		if len(existing) > 0 {
			current = existing[0].Type
		}

		next, vote, message, err := transition(current, voteType, models.VoteUp, models.VoteDown,
			tally{Pos: topic.Upvotes, Neg: topic.Downvotes}, true)
		if err != nil {
			return err
		}

		update := tx.Model(&models.Topic{}).
			Scopes(tenant.ForTenant(forumID)).
			Where("id = ? AND upvotes = ? AND downvotes = ?", topicID, topic.Upvotes, topic.Downvotes).
			Updates(map[string]interface{}{"upvotes": next.Pos, "downvotes": next.Neg})
		if update.Error != nil {
			return fmt.Errorf("failed to update topic votes: %w", update.Error)
		}
		if update.RowsAffected == 0 {
			return errStaleCounters
		}

		now := s.now().UTC()
		switch {
		case len(existing) == 0:
			err = tx.Create(&models.TopicVote{
				ID:        uuid.New(),
				ForumID:   forumID,
				UserID:    actor.ID,
				TopicID:   topicID,
				Type:      vote,
				CreatedAt: now,
				UpdatedAt: now,
			}).Error
		case vote == "":
			err = tx.Delete(&existing[0]).Error
		default:
			err = tx.Model(&existing[0]).Updates(map[string]interface{}{"type": vote, "updated_at": now}).Error
		}
		if err != nil {
			return fmt.Errorf("failed to store vote: %w", err)
		}

		topic.Upvotes, topic.Downvotes = next.Pos, next.Neg
		result = TopicVoteResult{Topic: &topic, Vote: vote, Message: message}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// VotePost toggles a like or dislike on a post. Posts have no score floor.
func (s *VoteService) VotePost(forumID string, actor *Actor, postID uuid.UUID, reaction string) (*PostVoteResult, error) {
	var result *PostVoteResult
	var err error
	for attempt := 0; attempt < maxVoteAttempts; attempt++ {
		result, err = s.applyPostVote(forumID, actor, postID, reaction)
		if !errors.Is(err, errStaleCounters) {
			break
		}
	}
	if errors.Is(err, errStaleCounters) {
		return nil, ErrVoteConflict
	}
	if err != nil {
		return nil, err
	}

	s.events.Publish(newEvent(notify.PostVoted, forumID, map[string]interface{}{
		"post_id":  result.Post.ID,
		"likes":    result.Post.Likes,
		"dislikes": result.Post.Dislikes,
	}, s.now().UTC()))
	return result, nil
}

func (s *VoteService) applyPostVote(forumID string, actor *Actor, postID uuid.UUID, reaction string) (*PostVoteResult, error) {
	var result PostVoteResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := authorize(tx, forumID, actor, permissions.VotePosts); err != nil {
			return err
		}

		var post models.Post
		err := tx.Scopes(tenant.ForTenant(forumID)).Where("id = ?", postID).First(&post).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("post")
		}
		if err != nil {
			return err
		}
		if err := hiddenFrom(tx, forumID, actor, post.AuthorUsername, "post"); err != nil {
			return err
		}

		var existing []models.PostVote
		if err := tx.Where("user_id = ? AND post_id = ?", actor.ID, postID).Limit(1).Find(&existing).Error; err != nil {
			return err
		}
		current := ""
		if len(existing) > 0 {
			current = existing[0].Type
		}

		next, vote, message, err := transition(current, reaction, models.ReactionLike, models.ReactionDislike,
			tally{Pos: post.Likes, Neg: post.Dislikes}, false)
		if err != nil {
			return err
		}

		update := tx.Model(&models.Post{}).
			Scopes(tenant.ForTenant(forumID)).
			Where("id = ? AND likes = ? AND dislikes = ?", postID, post.Likes, post.Dislikes).
			Updates(map[string]interface{}{"likes": next.Pos, "dislikes": next.Neg})
		if update.Error != nil {
			return fmt.Errorf("failed to update post votes: %w", update.Error)
		}
		if update.RowsAffected == 0 {
			return errStaleCounters
		}

		now := s.now().UTC()
		switch {
		case len(existing) == 0:
			err = tx.Create(&models.PostVote{
				ID:        uuid.New(),
				ForumID:   forumID,
				UserID:    actor.ID,
				PostID:    postID,
				Type:      vote,
				CreatedAt: now,
				UpdatedAt: now,
			}).Error
		case vote == "":
			err = tx.Delete(&existing[0]).Error
		default:
			err = tx.Model(&existing[0]).Updates(map[string]interface{}{"type": vote, "updated_at": now}).Error
		}
		if err != nil {
			return fmt.Errorf("failed to store vote: %w", err)
		}

		post.Likes, post.Dislikes = next.Pos, next.Neg
		result = PostVoteResult{Post: &post, Vote: vote, Message: message}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// TopicVotesOf returns userID's votes keyed by topic id for the given topics.
func (s *VoteService) TopicVotesOf(forumID string, userID uuid.UUID, topicIDs []uuid.UUID) (map[uuid.UUID]string, error) {
	votes := make(map[uuid.UUID]string)
	if userID == uuid.Nil || len(topicIDs) == 0 {
		return votes, nil
	}

	var rows []models.TopicVote
	if err := s.db.Scopes(tenant.ForTenant(forumID)).
		Where("user_id = ? AND topic_id IN ?", userID, topicIDs).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		votes[r.TopicID] = r.Type
	}
	return votes, nil
}
