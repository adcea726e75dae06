package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"devconnector/apperror"
	"devconnector/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	msgNoProfile       = "There is no profile for this user"
	msgProfileNotFound = "Profile not found"
	msgNoGithub        = "No Github profile found"
)

type ProfileService struct {
	profiles ProfileStore
	users    UserStore
	repos    RepoLister
}

func NewProfileService(profiles ProfileStore, users UserStore, repos RepoLister) *ProfileService {
	return &ProfileService{profiles: profiles, users: users, repos: repos}
}

// ProfileInput is an upsert request. Skills is the raw comma-separated list;
// nil optional fields are left as they are.
type ProfileInput struct {
	Status         string
	Skills         string
	Company        *string
	Website        *string
	Location       *string
	Bio            *string
	GithubUsername *string
	Youtube        *string
	Twitter        *string
	Facebook       *string
	Linkedin       *string
	Instagram      *string
}

func (in ProfileInput) fields() (models.ProfileFields, error) {
	var errs []apperror.FieldError
	if blank(in.Status) {
		errs = append(errs, apperror.FieldError{Param: "status", Msg: "Status is required"})
	}
	skills := SplitSkills(in.Skills)
	if len(skills) == 0 {
		errs = append(errs, apperror.FieldError{Param: "skills", Msg: "Skills is required"})
	}
	if len(errs) > 0 {
		return models.ProfileFields{}, apperror.Validation(errs...)
	}

	return models.ProfileFields{
		Status:         strings.TrimSpace(in.Status),
		Skills:         skills,
		Company:        in.Company,
		Website:        in.Website,
		Location:       in.Location,
		Bio:            in.Bio,
		GithubUsername: in.GithubUsername,
		Youtube:        in.Youtube,
		Twitter:        in.Twitter,
		Facebook:       in.Facebook,
		Linkedin:       in.Linkedin,
		Instagram:      in.Instagram,
	}, nil
}

// ExperienceInput describes a job. Dates are YYYY-MM-DD or RFC 3339; an empty
// To means the entry has no end date.
type ExperienceInput struct {
	Title       string
	Company     string
	Location    string
	From        string
	To          string
	Current     bool
	Description string
}

type EducationInput struct {
	School       string
	Degree       string
	FieldOfStudy string
	From         string
	To           string
	Current      bool
	Description  string
}

// GetByUser returns the caller's own profile.
func (s *ProfileService) GetByUser(ctx context.Context, userID primitive.ObjectID) (*models.Profile, error) {
	p, err := s.profiles.GetByUser(ctx, userID)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, apperror.NotFound(msgNoProfile)
	}
	return p, err
}

func (s *ProfileService) List(ctx context.Context) ([]models.Profile, error) {
	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return nil, err
	}
	if profiles == nil {
		profiles = []models.Profile{}
	}
	return profiles, nil
}

// GetByUserID returns the public profile of another user.
func (s *ProfileService) GetByUserID(ctx context.Context, userHex string) (*models.Profile, error) {
	userID, err := parseID(userHex, msgProfileNotFound)
	if err != nil {
		return nil, err
	}
	p, err := s.profiles.GetByUser(ctx, userID)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, apperror.NotFound(msgProfileNotFound)
	}
	return p, err
}

// Upsert creates or updates the caller's profile and returns the stored
// result.
func (s *ProfileService) Upsert(ctx context.Context, userID primitive.ObjectID, in ProfileInput) (*models.Profile, error) {
	fields, err := in.fields()
	if err != nil {
		return nil, err
	}
	if err := s.profiles.Upsert(ctx, userID, fields); err != nil {
		return nil, err
	}
	return s.profiles.GetByUser(ctx, userID)
}

func parseSpan(from, to string) (time.Time, *time.Time, []apperror.FieldError) {
	var errs []apperror.FieldError
	var start time.Time
	if blank(from) {
		errs = append(errs, apperror.FieldError{Param: "from", Msg: "From date is required"})
	} else if t, err := ParseDate(from); err != nil {
		errs = append(errs, apperror.FieldError{Param: "from", Msg: "From date is invalid"})
	} else {
		start = t
	}

	var end *time.Time
	if !blank(to) {
		t, err := ParseDate(to)
		if err != nil {
			errs = append(errs, apperror.FieldError{Param: "to", Msg: "To date is invalid"})
		} else {
			end = &t
		}
	}
	return start, end, errs
}

func (s *ProfileService) AddExperience(ctx context.Context, userID primitive.ObjectID, in ExperienceInput) (*models.Profile, error) {
	var errs []apperror.FieldError
	if blank(in.Title) {
		errs = append(errs, apperror.FieldError{Param: "title", Msg: "Title is required"})
	}
	if blank(in.Company) {
		errs = append(errs, apperror.FieldError{Param: "company", Msg: "Company is required"})
	}
	from, to, spanErrs := parseSpan(in.From, in.To)
	if errs = append(errs, spanErrs...); len(errs) > 0 {
		return nil, apperror.Validation(errs...)
	}
	if in.Current {
		to = nil
	}

	p, err := s.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	entry := models.Experience{
		ID:          primitive.NewObjectID(),
		Title:       strings.TrimSpace(in.Title),
		Company:     strings.TrimSpace(in.Company),
		Location:    in.Location,
		From:        from,
		To:          to,
		Current:     in.Current,
		Description: in.Description,
	}
	p.Experience = append([]models.Experience{entry}, p.Experience...)

	if err := s.profiles.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProfileService) RemoveExperience(ctx context.Context, userID primitive.ObjectID, expHex string) (*models.Profile, error) {
	p, err := s.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	id, err := parseID(expHex, "Experience not found")
	if err != nil {
		return nil, err
	}
	i := p.ExperienceIndex(id)
	if i < 0 {
		return nil, apperror.NotFound("Experience not found")
	}
	p.Experience = append(p.Experience[:i], p.Experience[i+1:]...)

	if err := s.profiles.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProfileService) AddEducation(ctx context.Context, userID primitive.ObjectID, in EducationInput) (*models.Profile, error) {
	var errs []apperror.FieldError
	if blank(in.School) {
		errs = append(errs, apperror.FieldError{Param: "school", Msg: "School is required"})
	}
	if blank(in.Degree) {
		errs = append(errs, apperror.FieldError{Param: "degree", Msg: "Degree is required"})
	}
	if blank(in.FieldOfStudy) {
		errs = append(errs, apperror.FieldError{Param: "fieldofstudy", Msg: "Field of study is required"})
	}
	from, to, spanErrs := parseSpan(in.From, in.To)
	if errs = append(errs, spanErrs...); len(errs) > 0 {
		return nil, apperror.Validation(errs...)
	}
	if in.Current {
		to = nil
	}

	p, err := s.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	entry := models.Education{
		ID:           primitive.NewObjectID(),
		School:       strings.TrimSpace(in.School),
		Degree:       strings.TrimSpace(in.Degree),
		FieldOfStudy: strings.TrimSpace(in.FieldOfStudy),
		From:         from,
		To:           to,
		Current:      in.Current,
		Description:  in.Description,
	}
	p.Education = append([]models.Education{entry}, p.Education...)

	if err := s.profiles.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProfileService) RemoveEducation(ctx context.Context, userID primitive.ObjectID, eduHex string) (*models.Profile, error) {
	p, err := s.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	id, err := parseID(eduHex, "Education not found")
	if err != nil {
		return nil, err
	}
	i := p.EducationIndex(id)
	if i < 0 {
		return nil, apperror.NotFound("Education not found")
	}
	p.Education = append(p.Education[:i], p.Education[i+1:]...)

	if err := s.profiles.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// DeleteAccount removes the caller's profile and user record. Posts and
// comments they wrote are kept.
func (s *ProfileService) DeleteAccount(ctx context.Context, userID primitive.ObjectID) error {
	if err := s.profiles.DeleteByUser(ctx, userID); err != nil {
		return err
	}
	return s.users.Delete(ctx, userID)
}

// Repos lists the latest public repositories of a GitHub user.
func (s *ProfileService) Repos(ctx context.Context, username string) (json.RawMessage, error) {
	username = strings.TrimSpace(username)
	if username == "" || s.repos == nil {
		return nil, apperror.Upstream(msgNoGithub, nil)
	}
	return s.repos.Repos(ctx, username)
}
