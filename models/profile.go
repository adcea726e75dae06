package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Profile struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID         primitive.ObjectID `bson:"user" json:"-"`
	Company        string             `bson:"company,omitempty" json:"company,omitempty"`
	Website        string             `bson:"website,omitempty" json:"website,omitempty"`
	Location       string             `bson:"location,omitempty" json:"location,omitempty"`
	Bio            string             `bson:"bio,omitempty" json:"bio,omitempty"`
	Status         string             `bson:"status" json:"status"`
	GithubUsername string             `bson:"githubusername,omitempty" json:"githubusername,omitempty"`
	Skills         []string           `bson:"skills" json:"skills"`
	Social         Social             `bson:"social" json:"social"`
	Experience     []Experience       `bson:"experience" json:"experience"`
	Education      []Education        `bson:"education" json:"education"`
	CreatedAt      time.Time          `bson:"date" json:"date"`

	// Owner is filled by read operations and never persisted.
	Owner *UserSummary `bson:"-" json:"user,omitempty"`
}

type Social struct {
	Youtube   string `bson:"youtube,omitempty" json:"youtube,omitempty"`
	Twitter   string `bson:"twitter,omitempty" json:"twitter,omitempty"`
	Facebook  string `bson:"facebook,omitempty" json:"facebook,omitempty"`
	Linkedin  string `bson:"linkedin,omitempty" json:"linkedin,omitempty"`
	Instagram string `bson:"instagram,omitempty" json:"instagram,omitempty"`
}

type Experience struct {
	ID          primitive.ObjectID `bson:"_id" json:"_id"`
	Title       string             `bson:"title" json:"title"`
	Company     string             `bson:"company" json:"company"`
	Location    string             `bson:"location,omitempty" json:"location,omitempty"`
	From        time.Time          `bson:"from" json:"from"`
	To          *time.Time         `bson:"to,omitempty" json:"to,omitempty"`
	Current     bool               `bson:"current" json:"current"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
}

type Education struct {
	ID           primitive.ObjectID `bson:"_id" json:"_id"`
	School       string             `bson:"school" json:"school"`
	Degree       string             `bson:"degree" json:"degree"`
	FieldOfStudy string             `bson:"fieldofstudy" json:"fieldofstudy"`
	From         time.Time          `bson:"from" json:"from"`
	To           *time.Time         `bson:"to,omitempty" json:"to,omitempty"`
	Current      bool               `bson:"current" json:"current"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
}

// ProfileFields carries an upsert. Nil pointers are fields the caller did
// not supply and must be left untouched on an existing profile.
type ProfileFields struct {
	Status         string
	Skills         []string
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

// Apply merges the supplied fields into p.
func (f ProfileFields) Apply(p *Profile) {
	p.Status = f.Status
	p.Skills = f.Skills
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&p.Company, f.Company)
	set(&p.Website, f.Website)
	set(&p.Location, f.Location)
	set(&p.Bio, f.Bio)
	set(&p.GithubUsername, f.GithubUsername)
	set(&p.Social.Youtube, f.Youtube)
	set(&p.Social.Twitter, f.Twitter)
	set(&p.Social.Facebook, f.Facebook)
	set(&p.Social.Linkedin, f.Linkedin)
	set(&p.Social.Instagram, f.Instagram)
}

// SetDocument returns the $set document for the supplied fields, keyed by
// their stored names.
func (f ProfileFields) SetDocument() map[string]interface{} {
	set := map[string]interface{}{
		"status": f.Status,
		"skills": f.Skills,
	}
	add := func(key string, v *string) {
		if v != nil {
			set[key] = *v
		}
	}
	add("company", f.Company)
	add("website", f.Website)
	add("location", f.Location)
	add("bio", f.Bio)
	add("githubusername", f.GithubUsername)
	add("social.youtube", f.Youtube)
	add("social.twitter", f.Twitter)
	add("social.facebook", f.Facebook)
	add("social.linkedin", f.Linkedin)
	add("social.instagram", f.Instagram)
	return set
}

// Normalize replaces nil collections so they serialize as empty arrays.
func (p *Profile) Normalize() {
	if p.Skills == nil {
		p.Skills = []string{}
	}
	if p.Experience == nil {
		p.Experience = []Experience{}
	}
	if p.Education == nil {
		p.Education = []Education{}
	}
}

// ExperienceIndex returns the position of the experience entry with the
// given id, or -1.
func (p *Profile) ExperienceIndex(id primitive.ObjectID) int {
	for i, e := range p.Experience {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// EducationIndex returns the position of the education entry with the given
// id, or -1.
func (p *Profile) EducationIndex(id primitive.ObjectID) int {
	for i, e := range p.Education {
		if e.ID == id {
			return i
		}
	}
	return -1
}
