package handlers

import (
	"net/http"

	"devconnector/services"

	"github.com/gin-gonic/gin"
)

type ProfileRequest struct {
	Status         string  `json:"status" binding:"required"`
	Skills         string  `json:"skills" binding:"required"`
	Company        *string `json:"company"`
	Website        *string `json:"website"`
	Location       *string `json:"location"`
	Bio            *string `json:"bio"`
	GithubUsername *string `json:"githubusername"`
	Youtube        *string `json:"youtube"`
	Twitter        *string `json:"twitter"`
	Facebook       *string `json:"facebook"`
	Linkedin       *string `json:"linkedin"`
	Instagram      *string `json:"instagram"`
}

type ExperienceRequest struct {
	Title       string `json:"title" binding:"required"`
	Company     string `json:"company" binding:"required"`
	Location    string `json:"location"`
	From        string `json:"from" binding:"required"`
	To          string `json:"to"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

type EducationRequest struct {
	School       string `json:"school" binding:"required"`
	Degree       string `json:"degree" binding:"required"`
	FieldOfStudy string `json:"fieldofstudy" binding:"required"`
	From         string `json:"from" binding:"required"`
	To           string `json:"to"`
	Current      bool   `json:"current"`
	Description  string `json:"description"`
}

// Profile routes report a missing profile as 400.
const profileNotFound = http.StatusBadRequest

type ProfileHandler struct {
	profiles *services.ProfileService
}

func NewProfileHandler(profiles *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Me handles GET /api/profile/me.
func (h *ProfileHandler) Me(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	p, err := h.profiles.GetByUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, profileNotFound)
		return
	}
	c.JSON(http.StatusOK, p)
}

// List handles GET /api/profile.
func (h *ProfileHandler) List(c *gin.Context) {
	profiles, err := h.profiles.List(c.Request.Context())
	if err != nil {
		respondError(c, err, profileNotFound)
		return
	}
	c.JSON(http.StatusOK, profiles)
}

// ByUser handles GET /api/profile/user/:user_id.
func (h *ProfileHandler) ByUser(c *gin.Context) {
	p, err := h.profiles.GetByUserID(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		respondError(c, err, profileNotFound)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Upsert handles POST /api/profile.
func (h *ProfileHandler) Upsert(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req ProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.profiles.Upsert(c.Request.Context(), userID, services.ProfileInput{
		Status:         req.Status,
		Skills:         req.Skills,
		Company:        req.Company,
		Website:        req.Website,
		Location:       req.Location,
		Bio:            req.Bio,
		GithubUsername: req.GithubUsername,
		Youtube:        req.Youtube,
		Twitter:        req.Twitter,
		Facebook:       req.Facebook,
		Linkedin:       req.Linkedin,
		Instagram:      req.Instagram,
	})
	if err != nil {
		respondError(c, err, profileNotFound)
		return
	}
	c.JSON(http.StatusOK, p)
}

// DeleteAccount handles DELETE /api/profile.
func (h *ProfileHandler) DeleteAccount(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.profiles.DeleteAccount(c.Request.Context(), userID); err != nil {
		respondError(c, err, profileNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "User deleted"})
}

// AddExperience handles PUT /api/profile/experience.
func (h *ProfileHandler) AddExperience(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req ExperienceRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.profiles.AddExperience(c.Request.Context(), userID, services.ExperienceInput{
		Title:       req.Title,
		Company:     req.Company,
		Location:    req.Location,
		From:        req.From,
		To:          req.To,
		Current:     req.Current,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err, profileNotFound)
		return
	}
	c.JSON(http.StatusOK, p)
}

// RemoveExperience handles DELETE /api/profile/experience/:exp_id.
func (h *ProfileHandler) RemoveExperience(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	p, err := h.profiles.RemoveExperience(c.Request.Context(), userID, c.Param("exp_id"))
	if err != nil {
		respondError(c, err, profileNotFound)
		return
	}
	c.JSON(http.StatusOK, p)
}

// AddEducation handles PUT /api/profile/education.
func (h *ProfileHandler) AddEducation(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req EducationRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.profiles.AddEducation(c.Request.Context(), userID, services.EducationInput{
		School:       req.School,
		Degree:       req.Degree,
		FieldOfStudy: req.FieldOfStudy,
		From:         req.From,
		To:           req.To,
		Current:      req.Current,
		Description:  req.Description,
	})
	if err != nil {
		respondError(c, err, profileNotFound)
		return
	}
	c.JSON(http.StatusOK, p)
}

// RemoveEducation handles DELETE /api/profile/education/:edu_id.
func (h *ProfileHandler) RemoveEducation(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	p, err := h.profiles.RemoveEducation(c.Request.Context(), userID, c.Param("edu_id"))
	if err != nil {
		respondError(c, err, profileNotFound)
		return
	}
	c.JSON(http.StatusOK, p)
}

// GithubRepos handles GET /api/profile/github/:username. The upstream body
// is passed through untouched.
func (h *ProfileHandler) GithubRepos(c *gin.Context) {
	body, err := h.profiles.Repos(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, err, http.StatusNotFound)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}
