// Package market exposes the command surface the presentation layer calls.
// It wires the account and listing repositories to the session manager:
// repositories never touch session state except through here.
package market

import (
	"errors"
	"log"

	"gearxchange/internal/listing"
	"gearxchange/internal/session"
	"gearxchange/internal/user"
)

// ErrNotAuthenticated reports an operation that needs a logged-in user
// while the session is anonymous.
var ErrNotAuthenticated = errors.New("not authenticated")

// Service bundles the store and the session manager behind the operations
// the client dispatches.
type Service struct {
	Users    *user.Repo
	Listings *listing.Repo
	Sessions *session.Manager
}

// NewService creates the command surface over the given collaborators.
func NewService(users *user.Repo, listings *listing.Repo, sessions *session.Manager) *Service {
	return &Service{Users: users, Listings: listings, Sessions: sessions}
}

// AddUser registers a new account.
func (s *Service) AddUser(username, email, password, fullName, phone string) error {
	_, err := s.Users.Create(username, email, password, fullName, phone)
	return err
}

// VerifyUser authenticates by username or email. On success the session is
// set to {identifier, regular} and the change is broadcast. A broadcast
// delivery failure is returned alongside verified=true: the login itself
// has committed.
func (s *Service) VerifyUser(identifier, password string) (bool, error) {
	ok, err := s.Users.Authenticate(identifier, password)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	if err := s.Sessions.Set(identifier, session.LevelRegular); err != nil {
		if errors.Is(err, session.ErrNotifyFailed) {
			return true, err
		}
		return false, err
	}
	return true, nil
}

// CreateListing validates and stores a listing. The claimed user_id is not
// checked against the session; any caller may attribute a listing to any
// user.
func (s *Service) CreateListing(l *listing.Listing) (int, error) {
	return s.Listings.Create(l)
}

// RegisterView bumps a listing's view counter. When a user is logged in
// the listing is also recorded in their visit history.
func (s *Service) RegisterView(listingID int) error {
	if err := s.Listings.RegisterView(listingID); err != nil {
		return err
	}

	u, err := s.currentUser()
	if errors.Is(err, ErrNotAuthenticated) {
		// Anonymous browsing still counts the view.
		return nil
	}
	if err != nil {
		// The view is already counted; a broken session lookup should not
		// undo that, but it is not an anonymous browse either.
		log.Printf("resolve current user: %v", err)
		return nil
	}
	if err := s.Listings.RecordVisit(u.ID, listingID); err != nil {
		log.Printf("record visit for user %d: %v", u.ID, err)
	}
	return nil
}

// ListListings returns all listings in the requested order.
func (s *Service) ListListings(order listing.Order) ([]*listing.Listing, error) {
	return s.Listings.List(order)
}

// GetListing returns a single listing.
func (s *Service) GetListing(id int) (*listing.Listing, error) {
	return s.Listings.Get(id)
}

// DeleteListing removes a listing owned by the current user.
func (s *Service) DeleteListing(listingID int) error {
	u, err := s.currentUser()
	if err != nil {
		return err
	}
	return s.Listings.Delete(listingID, u.ID)
}

// AddFavourite stars a listing for a user; idempotent.
func (s *Service) AddFavourite(userID, listingID int) error {
	return s.Listings.AddFavourite(userID, listingID)
}

// RemoveFavourite unstars a listing for a user; removing a missing pair
// succeeds.
func (s *Service) RemoveFavourite(userID, listingID int) error {
	return s.Listings.RemoveFavourite(userID, listingID)
}

// GetFavouriteListings returns a user's starred listings.
func (s *Service) GetFavouriteListings(userID int) ([]*listing.Listing, error) {
	return s.Listings.FavouritesByUser(userID)
}

// GetVisitedListings returns the listings a user previously viewed.
func (s *Service) GetVisitedListings(userID int) ([]*listing.Listing, error) {
	return s.Listings.VisitedByUser(userID)
}

// PlaceBid records the current user's standing bid on a listing.
func (s *Service) PlaceBid(listingID int, amount float64) error {
	u, err := s.currentUser()
	if err != nil {
		return err
	}
	return s.Listings.PlaceBid(u.ID, listingID, amount)
}

// ListBids returns the standing bids on a listing.
func (s *Service) ListBids(listingID int) ([]*listing.Bid, error) {
	return s.Listings.BidsFor(listingID)
}

// UpdateCredentials applies partial profile changes to the current user.
// Empty fields are left unchanged.
func (s *Service) UpdateCredentials(fullName, email, phone, password string) error {
	u, err := s.currentUser()
	if err != nil {
		return err
	}

	if fullName != "" || phone != "" {
		if fullName == "" {
			fullName = u.FullName
		}
		if phone == "" {
			phone = u.Phone
		}
		if err := s.Users.UpdateProfile(u.ID, fullName, phone); err != nil {
			return err
		}
	}
	if email != "" && email != u.Email {
		if err := s.Users.UpdateEmail(u.ID, email); err != nil {
			return err
		}
	}
	if password != "" {
		if err := s.Users.UpdatePassword(u.ID, password); err != nil {
			return err
		}
	}
	return nil
}

// GetUserState returns the current session snapshot.
func (s *Service) GetUserState() session.State {
	return s.Sessions.State()
}

// CurrentUser resolves the session identifier to its account record.
func (s *Service) CurrentUser() (*user.User, error) {
	return s.currentUser()
}

// currentUser maps the session's login identifier back to an account. The
// identifier is whatever string the login used, so both lookups are tried.
func (s *Service) currentUser() (*user.User, error) {
	state := s.Sessions.State()
	if state.Level == session.LevelNone || state.Username == "" {
		return nil, ErrNotAuthenticated
	}

	u, err := s.Users.GetByUsername(state.Username)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, user.ErrNotFound) {
		return nil, err
	}

	u, err = s.Users.GetByEmail(state.Username)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, err
	}
	return u, nil
}

// LogOut resets the session to anonymous.
func (s *Service) LogOut() {
	s.Sessions.LogOut()
}
