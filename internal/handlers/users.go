package handlers

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/filestore/backend/internal/models"
	"github.com/filestore/backend/pkg/logger"
	"github.com/filestore/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// minSearchLength keeps a search from listing every account.
const minSearchLength = 2

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type UsersHandler struct {
	DB *gorm.DB
}

func NewUsersHandler(db *gorm.DB) *UsersHandler {
	return &UsersHandler{DB: db}
}

// Search finds share targets by username or email. The caller is never
// included since a file cannot be shared with its owner.
func (h *UsersHandler) Search(c *fiber.Ctx) error {
	currentUser, err := requireUser(c)
	if err != nil {
		return err
	}

	search := strings.TrimSpace(c.Query("q"))
	if utf8.RuneCountInString(search) < minSearchLength {
		return utils.FieldError(c, "q", fmt.Sprintf("search query must be at least %d characters", minSearchLength))
	}
	p := utils.ParsePagination(c)

	logger.InfoWithUser(currentUser.ID.String(), "user_search", map[string]interface{}{
		"query": search,
		"limit": p.Limit,
	})
	pattern := "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
	query := h.DB.WithContext(c.UserContext()).Model(&models.User{}).
		Where("id <> ?", currentUser.ID).
		Where(`LOWER(username) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\'`, pattern, pattern).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed counting users")
	}

	var users []models.User
	if err := query.Order("username ASC").Scopes(utils.Paginate(p)).Find(&users).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed searching users")
	}

	return utils.Paginated(c, users, p, total)
}
