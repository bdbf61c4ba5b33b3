// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package taxonomy

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"medaudio/internal/models"
)

// Validation limits for category fields.
const (
	MaxNameLen        = 100
	MaxDescriptionLen = 500

	// DefaultSiblingCap is the recommended maximum number of categories
	// under one parent. Exceeding it only produces a warning.
	DefaultSiblingCap = 50
)

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// fieldValidator returns the shared validator instance with the custom
// rgbhex rule registered.
func fieldValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("rgbhex", func(fl validator.FieldLevel) bool {
			return hexColor.MatchString(fl.Field().String())
		})
	})
	return validate
}

// categoryFields mirrors the length and format rules on CategoryInput.
type categoryFields struct {
	Name        string `validate:"required,max=100"`
	Description string `validate:"max=500"`
	Color       string `validate:"omitempty,rgbhex"`
}

var fieldMessages = map[string]string{
	"Name.required":   "Name is required.",
	"Name.max":        fmt.Sprintf("Name is too long (max %d characters).", MaxNameLen),
	"Description.max": fmt.Sprintf("Description is too long (max %d characters).", MaxDescriptionLen),
	"Color.rgbhex":    "Color must be a hex value like #RRGGBB.",
}

// checkFields runs the struct rules and groups failures by field name.
func checkFields(f categoryFields) map[string][]FieldError {
	out := make(map[string][]FieldError)
	err := fieldValidator().Struct(f)
	if err == nil {
		return out
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["Name"] = append(out["Name"], FieldError{
			Code: CodeInvalidHierarchy, Field: "name", Message: err.Error(),
		})
		return out
	}
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = fmt.Sprintf("%s failed %s validation.", fe.Field(), fe.Tag())
		}
		out[fe.Field()] = append(out[fe.Field()], FieldError{
			Code:    CodeInvalidHierarchy,
			Field:   strings.ToLower(fe.Field()[:1]) + fe.Field()[1:],
			Message: msg,
		})
	}
	return out
}

// Option configures a validation run.
type Option func(*options)

type options struct {
	selfID     string
	siblingCap int
}

// ForUpdate marks the run as an update of the category with the given id.
// The category is excluded from its own sibling-name check.
func ForUpdate(id string) Option {
	return func(o *options) { o.selfID = id }
}

// WithSiblingCap overrides the recommended number of siblings per parent.
func WithSiblingCap(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.siblingCap = n
		}
	}
}

// Validate checks a create or update payload against the current category
// set. Every violation is collected; the order of the errors follows the
// order of the checks: name, description, sibling uniqueness, parent
// existence, parent level, self-parenting, color.
func Validate(in models.CategoryInput, existing []models.Category, opts ...Option) Result {
	o := options{siblingCap: DefaultSiblingCap}
	for _, opt := range opts {
		opt(&o)
	}

	var r Result
	name := strings.TrimSpace(in.Name)
	parentID := NormalizeID(in.ParentID)

	fieldErrs := checkFields(categoryFields{
		Name:        name,
		Description: in.Description,
		Color:       in.Color,
	})
	r.Errors = append(r.Errors, fieldErrs["Name"]...)
	r.Errors = append(r.Errors, fieldErrs["Description"]...)

	if name != "" {
		for _, c := range existing {
			if c.ID == o.selfID {
				continue
			}
			if sameParent(c.ParentID, parentID) && strings.EqualFold(strings.TrimSpace(c.Name), name) {
				r.addError(CodeDuplicateName, "name",
					fmt.Sprintf("A category named %q already exists at this level.", name))
				break
			}
		}
	}

	selfParent := parentID != nil && o.selfID != "" && *parentID == o.selfID
	if parentID != nil && !selfParent {
		parent, ok := find(existing, *parentID)
		switch {
		case !ok:
			r.addError(CodeParentNotFound, "parentId", "Parent category does not exist.")
		case parent.Level != models.LevelPrimary || parent.ParentID != nil:
			r.addError(CodeInvalidLevel, "parentId",
				"Categories can only be nested under a primary category.")
		}
		if o.selfID != "" && hasChildren(existing, o.selfID) {
			r.addError(CodeInvalidLevel, "parentId",
				"A category with subcategories cannot become a subcategory.")
		}
	}
	if in.Level != nil {
		switch lvl := *in.Level; {
		case lvl != models.LevelPrimary && lvl != models.LevelSecondary:
			r.addError(CodeInvalidLevel, "level", fmt.Sprintf("Level must be 1 or 2, got %d.", lvl))
		case lvl != models.LevelFor(parentID):
			r.addError(CodeInvalidLevel, "level", "Level does not match the parent category.")
		}
	}

	if selfParent {
		r.addError(CodeCircularReference, "parentId", "A category cannot be its own parent.")
	}

	r.Errors = append(r.Errors, fieldErrs["Color"]...)

	if w := siblingWarning(existing, parentID, o); w != "" {
		r.addWarning(w)
	}
	return r.finish()
}

// siblingWarning reports when a parent is approaching the sibling cap.
func siblingWarning(existing []models.Category, parentID *string, o options) string {
	n := 1 // the category being written
	for _, c := range existing {
		if c.ID != o.selfID && sameParent(c.ParentID, parentID) {
			n++
		}
	}
	switch {
	case n > o.siblingCap:
		return fmt.Sprintf("This level has %d categories, above the recommended maximum of %d.", n, o.siblingCap)
	case n*10 >= o.siblingCap*9:
		return fmt.Sprintf("This level has %d of the recommended %d categories.", n, o.siblingCap)
	}
	return ""
}

// ValidateHierarchy checks an entire category set for violations of the
// hierarchy invariants. It is used by the admin consistency report.
func ValidateHierarchy(categories []models.Category) Result {
	var r Result
	byID := make(map[string]models.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	seen := make(map[string]string, len(categories))
	for _, c := range categories {
		add := func(code Code, field, msg string) {
			r.Errors = append(r.Errors, FieldError{Code: code, Field: field, Message: msg, CategoryID: c.ID})
		}

		if c.Level != models.LevelFor(c.ParentID) {
			add(CodeInvalidLevel, "level",
				fmt.Sprintf("Category %q has level %d but parent pointer implies level %d.", c.Name, c.Level, models.LevelFor(c.ParentID)))
		}
		if c.ParentID != nil {
			switch parent, ok := byID[*c.ParentID]; {
			case *c.ParentID == c.ID:
				add(CodeCircularReference, "parentId", fmt.Sprintf("Category %q is its own parent.", c.Name))
			case !ok:
				add(CodeParentNotFound, "parentId", fmt.Sprintf("Parent of %q does not exist.", c.Name))
			case parent.ParentID != nil || parent.Level != models.LevelPrimary:
				add(CodeInvalidLevel, "parentId", fmt.Sprintf("Category %q is nested under secondary category %q.", c.Name, parent.Name))
			}
		}

		key := parentKey(c.ParentID) + "\x00" + strings.ToLower(strings.TrimSpace(c.Name))
		if other, dup := seen[key]; dup {
			add(CodeDuplicateName, "name", fmt.Sprintf("Category %q duplicates sibling %s.", c.Name, other))
		} else {
			seen[key] = c.ID
		}
	}
	return r.finish()
}

// NormalizeID treats a pointer to an empty or blank string as nil.
func NormalizeID(id *string) *string {
	if id == nil {
		return nil
	}
	s := strings.TrimSpace(*id)
	if s == "" {
		return nil
	}
	return &s
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func parentKey(id *string) string {
	if id == nil {
		return ""
	}
	return *id
}

func find(categories []models.Category, id string) (models.Category, bool) {
	for _, c := range categories {
		if c.ID == id {
			return c, true
		}
	}
	return models.Category{}, false
}

func hasChildren(categories []models.Category, id string) bool {
	for _, c := range categories {
		if c.ParentIs(id) {
			return true
		}
	}
	return false
}
