package handlers

import (
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/guard"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

// VoteHandler runs every vote through the guard so rapid repeats and
// concurrent duplicates never reach the vote engine.
type VoteHandler struct {
	voteService *services.VoteService
	guard       *guard.VoteGuard
}

func NewVoteHandler(voteService *services.VoteService, voteGuard *guard.VoteGuard) *VoteHandler {
	return &VoteHandler{voteService: voteService, guard: voteGuard}
}

func (h *VoteHandler) VoteTopic(c *fiber.Ctx) error {
	topicID, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid topic ID")
	}

	var req dto.VoteRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	actor := middleware.GetActor(c)
	if actor == nil {
		return writeError(c, services.ErrUnauthenticated)
	}

	var result *services.TopicVoteResult
	err := h.guard.Do(actor.ID.String(), "topic:"+topicID.String(), func() error {
		var err error
		result, err = h.voteService.ApplyVote(tenant.GetForumID(c), actor, topicID, req.Type)
		return err
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(result)
}

func (h *VoteHandler) VotePost(c *fiber.Ctx) error {
	postID, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid post ID")
	}

	var req dto.VoteRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	actor := middleware.GetActor(c)
	if actor == nil {
		return writeError(c, services.ErrUnauthenticated)
	}

	var result *services.PostVoteResult
	err := h.guard.Do(actor.ID.String(), "post:"+postID.String(), func() error {
		var err error
		result, err = h.voteService.VotePost(tenant.GetForumID(c), actor, postID, req.Type)
		return err
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(result)
}
