// Package formutil decodes, normalizes and validates the crop and identity
// bodies shared by the farmer, coordinator and admin handlers.
//
// Each input type follows the same steps:
//
//	var in formutil.CropInput
//	if err := respond.Decode(w, r, &in, maxBody); err != nil { ... }
//	in.Normalize()
//	if err := in.Validate().Err(); err != nil {
//		apierr.Write(w, err)
//		return
//	}
//
// Patch types carry pointer fields; a nil field is left unchanged.
package formutil

import (
	"net/http"
	"strings"

	cropstore "github.com/dalemusser/agreeverse/internal/app/store/crops"
	"github.com/dalemusser/agreeverse/internal/app/system/apierr"
	"github.com/dalemusser/agreeverse/internal/app/system/htmlsanitize"
	"github.com/dalemusser/agreeverse/internal/app/system/inputval"
	"github.com/dalemusser/agreeverse/internal/app/system/normalize"
	"github.com/dalemusser/agreeverse/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Crops                                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// CropInput is the body of the add-crop endpoints. FarmerID is only read by
// the coordinator handler, which adds crops on a farmer's behalf.
type CropInput struct {
	Title       string  `json:"title" validate:"required,max=200" label:"Title"`
	Description string  `json:"description" validate:"required,max=5000" label:"Description"`
	ImageURL    string  `json:"imageURL" validate:"omitempty,httpurl" label:"Image URL"`
	Tag         string  `json:"tag" validate:"required,max=50" label:"Tag"`
	Price       float64 `json:"price" validate:"gt=0,lte=1000000000000" label:"Price"`
	FarmerID    string  `json:"farmerId"`
}

// Normalize strips markup from the text fields.
func (in *CropInput) Normalize() {
	in.Title = htmlsanitize.PlainText(in.Title)
	in.Description = htmlsanitize.PlainText(in.Description)
	in.Tag = htmlsanitize.PlainText(in.Tag)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	in.FarmerID = strings.TrimSpace(in.FarmerID)
}

func (in *CropInput) Validate() *inputval.Result {
	return inputval.Validate(in)
}

// Crop builds the record for farmerID. coordinatorID is nil for crops the
// farmer lists directly.
func (in CropInput) Crop(farmerID primitive.ObjectID, coordinatorID *primitive.ObjectID) models.Crop {
	return models.Crop{
		Title:         in.Title,
		Description:   in.Description,
		ImageURL:      in.ImageURL,
		Tag:           in.Tag,
		Price:         in.Price,
		FarmerID:      farmerID,
		CoordinatorID: coordinatorID,
	}
}

// CropPatch is the body of the update-crop endpoints.
type CropPatch struct {
	Title       *string  `json:"title" validate:"omitnil,min=1,max=200" label:"Title"`
	Description *string  `json:"description" validate:"omitnil,min=1,max=5000" label:"Description"`
	ImageURL    *string  `json:"imageURL" validate:"omitempty,httpurl" label:"Image URL"`
	Tag         *string  `json:"tag" validate:"omitnil,min=1,max=50" label:"Tag"`
	Price       *float64 `json:"price" validate:"omitnil,gt=0,lte=1000000000000" label:"Price"`
}

func (p *CropPatch) Normalize() {
	sanitize(p.Title)
	sanitize(p.Description)
	sanitize(p.Tag)
	trim(p.ImageURL)
}

func (p *CropPatch) Validate() *inputval.Result {
	res := inputval.Validate(p)
	if p.Empty() {
		res.Add("", "Nothing to update.")
	}
	return res
}

// Empty reports whether the patch changes nothing.
func (p *CropPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.ImageURL == nil && p.Tag == nil && p.Price == nil
}

// Update converts the patch for the crop store.
func (p CropPatch) Update() cropstore.Update {
	return cropstore.Update{
		Title:       p.Title,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		Tag:         p.Tag,
		Price:       p.Price,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Farmers and coordinators                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// MemberInput is the body of add-farmer and add-coordinator. CoordinatorID
// is only read by the admin add-farmer endpoint.
type MemberInput struct {
	Name          string `json:"name" validate:"required,max=100" label:"Name"`
	Email         string `json:"email" validate:"required,emailaddr" label:"Email"`
	Phone         string `json:"phone" validate:"required,phone" label:"Phone"`
	Password      string `json:"password" validate:"required,min=6,max=72" label:"Password"`
	CoordinatorID string `json:"coordinatorId" validate:"omitempty,objectid" label:"Coordinator id"`
}

func (in *MemberInput) Normalize() {
	in.Name = normalize.Name(in.Name)
	in.Email = normalize.Email(in.Email)
	in.Phone = normalize.PhoneInput(in.Phone)
	in.CoordinatorID = strings.TrimSpace(in.CoordinatorID)
}

func (in *MemberInput) Validate() *inputval.Result {
	return inputval.Validate(in)
}

// CoordinatorObjectID returns the parsed coordinator id, or nil when none
// was given. Call after Validate.
func (in MemberInput) CoordinatorObjectID() *primitive.ObjectID {
	return objectID(in.CoordinatorID)
}

// MemberPatch is the body of update-farmer and update-coordinator. Password
// is only honoured by the admin endpoints; the coordinator handler rejects
// it. CoordinatorID moves a farmer and is admin only.
type MemberPatch struct {
	Name          *string `json:"name" validate:"omitnil,min=1,max=100" label:"Name"`
	Email         *string `json:"email" validate:"omitnil,emailaddr" label:"Email"`
	Phone         *string `json:"phone" validate:"omitnil,phone" label:"Phone"`
	Password      *string `json:"password" validate:"omitnil,min=6,max=72" label:"Password"`
	CoordinatorID *string `json:"coordinatorId" validate:"omitnil,objectid" label:"Coordinator id"`
}

func (p *MemberPatch) Normalize() {
	if p.Name != nil {
		*p.Name = normalize.Name(*p.Name)
	}
	if p.Email != nil {
		*p.Email = normalize.Email(*p.Email)
	}
	if p.Phone != nil {
		*p.Phone = normalize.PhoneInput(*p.Phone)
	}
	trim(p.CoordinatorID)
}

func (p *MemberPatch) Validate() *inputval.Result {
	return inputval.Validate(p)
}

// Set returns the profile fields to $set. Password and coordinator changes
// are applied separately by the caller.
func (p MemberPatch) Set() bson.M {
	set := bson.M{}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Email != nil {
		set["email"] = *p.Email
	}
	if p.Phone != nil {
		set["phone"] = *p.Phone
	}
	return set
}

func (p MemberPatch) CoordinatorObjectID() *primitive.ObjectID {
	if p.CoordinatorID == nil {
		return nil
	}
	return objectID(*p.CoordinatorID)
}

// PathID parses the chi URL parameter name as an ObjectID. A malformed id
// is a Validation error naming label.
func PathID(r *http.Request, name, label string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	if err != nil {
		return primitive.NilObjectID, apierr.New(apierr.Validation, "Invalid "+label+" id")
	}
	return id, nil
}

func objectID(s string) *primitive.ObjectID {
	if s == "" {
		return nil
	}
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return nil
	}
	return &id
}

func sanitize(s *string) {
	if s != nil {
		*s = htmlsanitize.PlainText(*s)
	}
}

func trim(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
