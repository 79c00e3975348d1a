package server

import (
	"errors"
	"time"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"notepool/internal/core"
	"notepool/internal/database/dto"
	"notepool/internal/database/repositories"
)

func (s *FiberServer) RegisterFiberRoutes() {
	// login attempts are capped at 5 per minute per address
	s.App.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: time.Minute,
	}), s.login)
	s.App.Get("/health", s.healthHandler)

	s.App.Use(jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(s.cfg.JWTSecret)},
	}))

	s.App.Get("/private", s.privatePage)

	s.App.Post("/notes", s.createNote)
	s.App.Get("/notes/search", s.searchNotes)
	s.App.Delete("/notes/:id", s.deleteNote)

	s.App.Post("/images", s.uploadImage)
	s.App.Get("/images/:uid", s.serveImage)
	s.App.Delete("/images/:uid", s.deleteImage)

	s.App.Get("/admin/users", s.listUsers)
	s.App.Post("/admin/users", s.addUser)
	s.App.Delete("/admin/users/:id", s.deleteUser)
}

func (s *FiberServer) healthHandler(c *fiber.Ctx) error {
	return c.JSON(s.db.Health())
}

// currentUser pulls the authenticated identity out of the verified JWT. The
// jwt middleware rejected the request already if the token was absent or
// invalid.
func (s *FiberServer) currentUser(c *fiber.Ctx) string {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	id, _ := claims["uid"].(string)
	return id
}

// fail translates coordinator errors into responses.
func (s *FiberServer) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, core.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	case errors.Is(err, core.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
	case errors.Is(err, core.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	case errors.Is(err, core.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "duplicate"})
	case errors.Is(err, core.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid"})
	case errors.Is(err, core.ErrIntegrity):
		s.log.Error("store integrity fault", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}

func (s *FiberServer) login(c *fiber.Ctx) error {
	credentials := dto.LoginCredentials{}
	if err := c.BodyParser(&credentials); err != nil {
		return err
	}
	id, err := s.core.VerifyLogin(c.Context(), credentials.ID, credentials.Password)
	if err != nil {
		s.log.Warn("failed login attempt", "user", core.NormalizeID(credentials.ID))
		return s.fail(c, err)
	}
	s.log.Info("successful login", "user", id)

	// Create the Claims
	claims := jwt.MapClaims{
		"uid": id,
		"exp": time.Now().Add(time.Hour * 72).Unix(),
	}

	// Create token
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	// Generate encoded token and send it as response.
	t, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.JSON(fiber.Map{"token": t})
}

func (s *FiberServer) privatePage(c *fiber.Ctx) error {
	requester := s.currentUser(c)
	notes, err := s.core.NotesFor(c.Context(), requester)
	if err != nil {
		return s.fail(c, err)
	}
	images, err := s.core.ImagesFor(c.Context(), requester)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"notes": notes, "images": images})
}

func (s *FiberServer) createNote(c *fiber.Ctx) error {
	requester := s.currentUser(c)
	body := dto.NewNote{}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	note, err := s.core.CreateNote(c.Context(), requester, body.Content)
	if err != nil {
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"note": note})
}

func (s *FiberServer) searchNotes(c *fiber.Ctx) error {
	requester := s.currentUser(c)
	query := c.Query("q")
	repo := repositories.NewSearchRepository(s.db.DB())
	result, err := repo.SearchQuery(c.Context(), query, requester)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"result": result})
}

func (s *FiberServer) deleteNote(c *fiber.Ctx) error {
	requester := s.currentUser(c)
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.ErrBadRequest.Code).JSON(fiber.Map{"message": "invalid note id"})
	}
	if err := s.core.DeleteNote(c.Context(), requester, id); err != nil {
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "note deleted successfully"})
}

func (s *FiberServer) uploadImage(c *fiber.Ctx) error {
	requester := s.currentUser(c)
	file, err := c.FormFile("file")
	if err != nil {
		// no file part; send the caller back without an error
		return c.Redirect("/private", fiber.StatusSeeOther)
	}
	src, err := file.Open()
	if err != nil {
		return s.fail(c, err)
	}
	defer src.Close()

	image, err := s.core.CreateImage(c.Context(), requester, file.Filename, src)
	if err != nil {
		if errors.Is(err, core.ErrValidation) {
			// disallowed extension is a soft reject
			return c.Redirect("/private", fiber.StatusSeeOther)
		}
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"image": image})
}

func (s *FiberServer) serveImage(c *fiber.Ctx) error {
	requester := s.currentUser(c)
	name, err := s.core.ImageFile(c.Context(), requester, c.Params("uid"))
	if err != nil {
		return s.fail(c, err)
	}
	return c.SendFile(s.pool.Path(name))
}

func (s *FiberServer) deleteImage(c *fiber.Ctx) error {
	requester := s.currentUser(c)
	if err := s.core.DeleteImage(c.Context(), requester, c.Params("uid")); err != nil {
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "image deleted successfully"})
}

func (s *FiberServer) listUsers(c *fiber.Ctx) error {
	requester := s.currentUser(c)
	users, err := s.core.ListUsers(c.Context(), requester)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

func (s *FiberServer) addUser(c *fiber.Ctx) error {
	requester := s.currentUser(c)
	body := dto.NewUser{}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := s.core.AddUser(c.Context(), requester, body.ID, body.Password); err != nil {
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "created user successfully"})
}

func (s *FiberServer) deleteUser(c *fiber.Ctx) error {
	requester := s.currentUser(c)
	if err := s.core.DeleteUser(c.Context(), requester, c.Params("id")); err != nil {
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "user deleted successfully"})
}
