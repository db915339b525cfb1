package models

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const DefaultProfilePicture = "https://img.icons8.com/?size=100&id=HDvFsY01Y3K1&format=png&color=000000"

// Address represents a single address book entry for a user. ID is assigned
// once on insertion and never changes.
type Address struct {
	ID          string `bson:"id" json:"id"`
	FullName    string `bson:"fullName" json:"fullName"`
	Phone       string `bson:"phone" json:"phone"`
	Pincode     string `bson:"pincode" json:"pincode"`
	AddressLine string `bson:"addressLine" json:"addressLine"`
	City        string `bson:"city" json:"city"`
	State       string `bson:"state" json:"state"`
	Country     string `bson:"country" json:"country"`
	IsDefault   bool   `bson:"isDefault" json:"isDefault"`
}

// AddressPatch carries a partial address update. Nil fields are left alone.
type AddressPatch struct {
	FullName    *string
	Phone       *string
	Pincode     *string
	AddressLine *string
	City        *string
	State       *string
	Country     *string
	IsDefault   *bool
}

// CartItem is one product line in a user's cart.
type CartItem struct {
	ID        string             `bson:"id" json:"id"`
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

// ProfilePatch carries a partial profile update. Nil or blank fields are left alone.
type ProfilePatch struct {
	Name           *string
	Email          *string
	Phone          *string
	ProfilePicture *string
}

// User represents the application user account. Addresses, cart and wishlist
// are embedded and saved together with the user document.
type User struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name           string               `bson:"name" json:"name"`
	Email          string               `bson:"email" json:"email"`
	PasswordHash   string               `bson:"passwordHash" json:"-"`
	Phone          string               `bson:"phone" json:"phone"`
	ProfilePicture string               `bson:"profilePicture" json:"profilePicture"`
	Addresses      []Address            `bson:"addresses" json:"addresses"`
	Cart           []CartItem           `bson:"cart" json:"cart"`
	Wishlist       []primitive.ObjectID `bson:"wishlist" json:"wishlist"`
	Token          string               `bson:"token,omitempty" json:"token,omitempty"`
	Version        int64                `bson:"version" json:"-"`
	CreatedAt      time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time            `bson:"updatedAt" json:"updatedAt"`
}

func NewUser(name, email, passwordHash string, now time.Time) User {
	return User{
		Name:           strings.TrimSpace(name),
		Email:          NormalizeEmail(email),
		PasswordHash:   passwordHash,
		ProfilePicture: DefaultProfilePicture,
		Addresses:      []Address{},
		Cart:           []CartItem{},
		Wishlist:       []primitive.ObjectID{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func newSubID() string {
	return uuid.NewString()
}

/* =========================
   PROFILE
========================= */

func (u *User) ApplyProfile(p ProfilePatch) {
	if v, ok := nonBlank(p.Name); ok {
		u.Name = v
	}
	if v, ok := nonBlank(p.Email); ok {
		u.Email = NormalizeEmail(v)
	}
	if v, ok := nonBlank(p.Phone); ok {
		u.Phone = v
	}
	if v, ok := nonBlank(p.ProfilePicture); ok {
		u.ProfilePicture = v
	}
}

/* =========================
   ADDRESSES
========================= */

// AddAddress appends addr under a fresh identifier. Existing addresses are not
// checked for duplicates and their default flags are left untouched.
func (u *User) AddAddress(addr Address) Address {
	addr.ID = newSubID()
	u.Addresses = append(u.Addresses, addr)
	return addr
}

func (u *User) addressIndex(id string) int {
	for i := range u.Addresses {
		if u.Addresses[i].ID == id {
			return i
		}
	}
	return -1
}

func (u *User) FindAddress(id string) (Address, bool) {
	if i := u.addressIndex(id); i >= 0 {
		return u.Addresses[i], true
	}
	return Address{}, false
}

// UpdateAddress overwrites only the fields present in p.
func (u *User) UpdateAddress(id string, p AddressPatch) (Address, error) {
	i := u.addressIndex(id)
	if i < 0 {
		return Address{}, ErrAddressNotFound
	}

	addr := &u.Addresses[i]
	if v, ok := nonBlank(p.FullName); ok {
		addr.FullName = v
	}
	if v, ok := nonBlank(p.Phone); ok {
		addr.Phone = v
	}
	if v, ok := nonBlank(p.Pincode); ok {
		addr.Pincode = v
	}
	if v, ok := nonBlank(p.AddressLine); ok {
		addr.AddressLine = v
	}
	if v, ok := nonBlank(p.City); ok {
		addr.City = v
	}
	if v, ok := nonBlank(p.State); ok {
		addr.State = v
	}
	if v, ok := nonBlank(p.Country); ok {
		addr.Country = v
	}
	if p.IsDefault != nil {
		addr.IsDefault = *p.IsDefault
	}
	return *addr, nil
}

// DeleteAddress removes the address with the given id. An unknown id leaves
// the list unchanged and is not an error.
func (u *User) DeleteAddress(id string) []Address {
	kept := make([]Address, 0, len(u.Addresses))
	for _, addr := range u.Addresses {
		if addr.ID != id {
			kept = append(kept, addr)
		}
	}
	u.Addresses = kept
	return u.Addresses
}

// SetDefaultAddress marks exactly the address with the given id as default.
func (u *User) SetDefaultAddress(id string) error {
	if u.addressIndex(id) < 0 {
		return ErrAddressNotFound
	}
	for i := range u.Addresses {
		u.Addresses[i].IsDefault = u.Addresses[i].ID == id
	}
	return nil
}

// DefaultAddress returns the first address flagged default.
func (u *User) DefaultAddress() (Address, bool) {
	for _, addr := range u.Addresses {
		if addr.IsDefault {
			return addr, true
		}
	}
	return Address{}, false
}

/* =========================
   CART
========================= */

// AddToCart merges by product: an existing line is incremented, otherwise a
// new line is appended.
func (u *User) AddToCart(productID primitive.ObjectID, quantity int) (CartItem, error) {
	if quantity < 1 {
		return CartItem{}, ErrInvalidQuantity
	}

	for i := range u.Cart {
		if u.Cart[i].ProductID == productID {
			if u.Cart[i].Quantity > math.MaxInt-quantity {
				return CartItem{}, ErrInvalidQuantity
			}
			u.Cart[i].Quantity += quantity
			return u.Cart[i], nil
		}
	}

	item := CartItem{ID: newSubID(), ProductID: productID, Quantity: quantity}
	u.Cart = append(u.Cart, item)
	return item, nil
}

func (u *User) UpdateCartQuantity(itemID string, quantity int) (CartItem, error) {
	if quantity < 1 {
		return CartItem{}, ErrInvalidQuantity
	}
	for i := range u.Cart {
		if u.Cart[i].ID == itemID {
			u.Cart[i].Quantity = quantity
			return u.Cart[i], nil
		}
	}
	return CartItem{}, ErrCartItemNotFound
}

func (u *User) RemoveCartItem(itemID string) error {
	for i := range u.Cart {
		if u.Cart[i].ID == itemID {
			u.Cart = append(u.Cart[:i:i], u.Cart[i+1:]...)
			return nil
		}
	}
	return ErrCartItemNotFound
}

func (u *User) ClearCart() {
	u.Cart = []CartItem{}
}

/* =========================
   WISHLIST
========================= */

func (u *User) InWishlist(productID primitive.ObjectID) bool {
	for _, id := range u.Wishlist {
		if id == productID {
			return true
		}
	}
	return false
}

// AddToWishlist reports whether the wishlist changed.
func (u *User) AddToWishlist(productID primitive.ObjectID) bool {
	if u.InWishlist(productID) {
		return false
	}
	u.Wishlist = append(u.Wishlist, productID)
	return true
}

func (u *User) RemoveFromWishlist(productID primitive.ObjectID) error {
	for i, id := range u.Wishlist {
		if id == productID {
			u.Wishlist = append(u.Wishlist[:i:i], u.Wishlist[i+1:]...)
			return nil
		}
	}
	return ErrNotInWishlist
}

func nonBlank(value *string) (string, bool) {
	if value == nil {
		return "", false
	}
	trimmed := strings.TrimSpace(*value)
	return trimmed, trimmed != ""
}
