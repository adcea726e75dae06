package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"devconnector/apperror"
	"devconnector/models"
	"devconnector/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type stubRepos struct {
	body json.RawMessage
	err  error
	got  string
}

func (s *stubRepos) Repos(_ context.Context, username string) (json.RawMessage, error) {
	s.got = username
	return s.body, s.err
}

func strPtr(s string) *string { return &s }

func seedUser(t *testing.T, store *testutil.MemStore, name string) *models.User {
	t.Helper()
	u := &models.User{Name: name, Email: primitive.NewObjectID().Hex() + "@example.com", Avatar: "//avatar/" + name}
	require.NoError(t, store.Users().Create(context.Background(), u))
	return u
}

func newProfileService(repos RepoLister) (*ProfileService, *testutil.MemStore) {
	store := testutil.NewMemStore()
	return NewProfileService(store.Profiles(), store.Users(), repos), store
}

func TestUpsertTwiceKeepsOneProfile(t *testing.T) {
	svc, store := newProfileService(nil)
	ctx := context.Background()
	u := seedUser(t, store, "Ada")

	first, err := svc.Upsert(ctx, u.ID, ProfileInput{Status: "Developer", Skills: "go", Company: strPtr("Acme"), Bio: strPtr("hi")})
	require.NoError(t, err)

	second, err := svc.Upsert(ctx, u.ID, ProfileInput{Status: "Senior Developer", Skills: "go, rust", Bio: strPtr("")})
	require.NoError(t, err)

	assert.Equal(t, 1, store.ProfileCount())
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, []string{"go", "rust"}, second.Skills)
	assert.Equal(t, "Senior Developer", second.Status)
	assert.Equal(t, "Acme", second.Company, "omitted fields are left as they were")
	assert.Equal(t, "", second.Bio, "supplied empty fields are written")
	require.NotNil(t, second.Owner)
	assert.Equal(t, "Ada", second.Owner.Name)
}

func TestUpsertValidation(t *testing.T) {
	svc, store := newProfileService(nil)
	u := seedUser(t, store, "Ada")

	_, err := svc.Upsert(context.Background(), u.ID, ProfileInput{Skills: " , "})
	require.ErrorIs(t, err, apperror.ErrValidation)
	assert.Len(t, apperror.Fields(err), 2)
	assert.Equal(t, 0, store.ProfileCount())
}

func TestGetProfiles(t *testing.T) {
	svc, store := newProfileService(nil)
	ctx := context.Background()
	u := seedUser(t, store, "Ada")

	_, err := svc.GetByUser(ctx, u.ID)
	require.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Equal(t, "There is no profile for this user", apperror.Fields(err)[0].Msg)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	_, err = svc.Upsert(ctx, u.ID, ProfileInput{Status: "Developer", Skills: "go"})
	require.NoError(t, err)

	p, err := svc.GetByUserID(ctx, u.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, u.ID, p.UserID)

	_, err = svc.GetByUserID(ctx, "not-an-id")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	_, err = svc.GetByUserID(ctx, primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	list, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestExperienceLifecycle(t *testing.T) {
	svc, store := newProfileService(nil)
	ctx := context.Background()
	u := seedUser(t, store, "Ada")

	_, err := svc.AddExperience(ctx, u.ID, ExperienceInput{Title: "Dev", Company: "Acme", From: "2019-01-01"})
	require.ErrorIs(t, err, apperror.ErrNotFound, "no profile yet")

	_, err = svc.Upsert(ctx, u.ID, ProfileInput{Status: "Developer", Skills: "go"})
	require.NoError(t, err)

	p, err := svc.AddExperience(ctx, u.ID, ExperienceInput{Title: "Dev", Company: "Acme", From: "2019-01-01", To: "2020-01-01"})
	require.NoError(t, err)
	p, err = svc.AddExperience(ctx, u.ID, ExperienceInput{Title: "Lead", Company: "Initech", From: "2020-02-01", To: "2021-01-01", Current: true})
	require.NoError(t, err)

	require.Len(t, p.Experience, 2)
	assert.Equal(t, "Lead", p.Experience[0].Title, "newest entry first")
	assert.Nil(t, p.Experience[0].To, "current jobs have no end date")
	require.NotNil(t, p.Experience[1].To)

	_, err = svc.RemoveExperience(ctx, u.ID, primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	p, err = svc.RemoveExperience(ctx, u.ID, p.Experience[1].ID.Hex())
	require.NoError(t, err)
	require.Len(t, p.Experience, 1)
	assert.Equal(t, "Lead", p.Experience[0].Title)

	stored, err := svc.GetByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Experience, 1)
}

func TestAddExperienceValidation(t *testing.T) {
	svc, store := newProfileService(nil)
	u := seedUser(t, store, "Ada")

	_, err := svc.AddExperience(context.Background(), u.ID, ExperienceInput{From: "yesterday"})
	require.ErrorIs(t, err, apperror.ErrValidation)

	var params []string
	for _, f := range apperror.Fields(err) {
		params = append(params, f.Param)
	}
	assert.Equal(t, []string{"title", "company", "from"}, params)
}

func TestEducationLifecycle(t *testing.T) {
	svc, store := newProfileService(nil)
	ctx := context.Background()
	u := seedUser(t, store, "Ada")
	_, err := svc.Upsert(ctx, u.ID, ProfileInput{Status: "Student", Skills: "go"})
	require.NoError(t, err)

	_, err = svc.AddEducation(ctx, u.ID, EducationInput{School: "MIT", Degree: "BSc"})
	require.ErrorIs(t, err, apperror.ErrValidation)

	p, err := svc.AddEducation(ctx, u.ID, EducationInput{School: "MIT", Degree: "BSc", FieldOfStudy: "CS", From: "2015-09-01T00:00:00Z"})
	require.NoError(t, err)
	require.Len(t, p.Education, 1)
	assert.Equal(t, "CS", p.Education[0].FieldOfStudy)

	p, err = svc.RemoveEducation(ctx, u.ID, p.Education[0].ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, p.Education)

	_, err = svc.RemoveEducation(ctx, u.ID, "bogus")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDeleteAccountKeepsPosts(t *testing.T) {
	store := testutil.NewMemStore()
	profiles := NewProfileService(store.Profiles(), store.Users(), nil)
	posts := NewPostService(store.Posts(), store.Users())
	ctx := context.Background()
	u := seedUser(t, store, "Ada")

	_, err := profiles.Upsert(ctx, u.ID, ProfileInput{Status: "Developer", Skills: "go"})
	require.NoError(t, err)
	_, err = posts.Create(ctx, u.ID, "hello")
	require.NoError(t, err)

	require.NoError(t, profiles.DeleteAccount(ctx, u.ID))

	_, err = store.Users().GetByID(ctx, u.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Equal(t, 0, store.ProfileCount())
	assert.Equal(t, 1, store.PostCount())
}

func TestRepos(t *testing.T) {
	stub := &stubRepos{body: json.RawMessage(`[{"name":"devconnector"}]`)}
	svc, _ := newProfileService(stub)

	body, err := svc.Repos(context.Background(), " octocat ")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"devconnector"}]`, string(body))
	assert.Equal(t, "octocat", stub.got)

	stub.err = apperror.Upstream("No Github profile found", errors.New("404"))
	_, err = svc.Repos(context.Background(), "ghost")
	assert.ErrorIs(t, err, apperror.ErrUpstream)

	_, err = svc.Repos(context.Background(), " ")
	assert.ErrorIs(t, err, apperror.ErrUpstream)
}
