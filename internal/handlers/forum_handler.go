package handlers

import (
	"strconv"

	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/tenant"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ForumHandler struct {
	forumService *services.ForumService
	voteService  *services.VoteService
}

func NewForumHandler(forumService *services.ForumService, voteService *services.VoteService) *ForumHandler {
	return &ForumHandler{forumService: forumService, voteService: voteService}
}

func (h *ForumHandler) CreateTopic(c *fiber.Ctx) error {
	var req dto.CreateTopicRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	topic, err := h.forumService.CreateTopic(tenant.GetForumID(c), middleware.GetActor(c), &req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(topic)
}

// ListTopics returns a page of topics plus the caller's own votes on them.
func (h *ForumHandler) ListTopics(c *fiber.Ctx) error {
	forumID := tenant.GetForumID(c)
	actor := middleware.GetActor(c)
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	topics, total, err := h.forumService.ListTopics(forumID, actor, dto.TopicQuery{
		Category: c.Query("category"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		return writeError(c, err)
	}

	myVotes := map[uuid.UUID]string{}
	if actor != nil {
		ids := make([]uuid.UUID, len(topics))
		for i, t := range topics {
			ids[i] = t.ID
		}
		myVotes, err = h.voteService.TopicVotesOf(forumID, actor.ID, ids)
		if err != nil {
			return writeError(c, err)
		}
	}

	return c.JSON(fiber.Map{
		"topics":   topics,
		"my_votes": myVotes,
		"total":    total,
		"page":     page,
	})
}

func (h *ForumHandler) GetTopic(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid topic ID")
	}

	forumID := tenant.GetForumID(c)
	actor := middleware.GetActor(c)
	topic, err := h.forumService.GetTopic(forumID, actor, id)
	if err != nil {
		return writeError(c, err)
	}
	posts, err := h.forumService.ListPosts(forumID, actor, id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(fiber.Map{"topic": topic, "posts": posts})
}

func (h *ForumHandler) DeleteTopic(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid topic ID")
	}

	if err := h.forumService.DeleteTopic(tenant.GetForumID(c), middleware.GetActor(c), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Topic deleted successfully"})
}

func (h *ForumHandler) CreatePost(c *fiber.Ctx) error {
	topicID, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid topic ID")
	}

	var req dto.CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	post, err := h.forumService.CreatePost(tenant.GetForumID(c), middleware.GetActor(c), topicID, &req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

func (h *ForumHandler) ListPosts(c *fiber.Ctx) error {
	topicID, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid topic ID")
	}

	posts, err := h.forumService.ListPosts(tenant.GetForumID(c), middleware.GetActor(c), topicID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"posts": posts})
}

func (h *ForumHandler) DeletePost(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid post ID")
	}

	if err := h.forumService.DeletePost(tenant.GetForumID(c), middleware.GetActor(c), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post deleted successfully"})
}
