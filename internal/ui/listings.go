package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/huh"

	"gearxchange/internal/listing"
	"gearxchange/internal/market"
)

type listingSource int

const (
	sourceAll listingSource = iota
	sourceFavourites
	sourceVisited
)

type listingsState int

const (
	listingsStateList listingsState = iota
	listingsStateDetail
	listingsStateBid
)

// orderCycle is the rotation the sort key steps through while browsing.
var orderCycle = []listing.Order{
	listing.OrderViewsDesc,
	listing.OrderPriceAsc,
	listing.OrderPriceDesc,
	listing.OrderDateDesc,
}

type listingsModel struct {
	svc    *market.Service
	source listingSource

	width  int
	height int

	Done bool

	state    listingsState
	orderIdx int

	list list.Model
	err  error

	selected *listing.Listing
	bids     []*listing.Bid
	status   string

	form      *huh.Form
	bidAmount string
	bidSave   bool
}

type listingItem struct {
	id    int
	title string
	desc  string
}

func (i listingItem) Title() string       { return i.title }
func (i listingItem) Description() string { return i.desc }
func (i listingItem) FilterValue() string { return i.title }

func newListingsModel(svc *market.Service, source listingSource) *listingsModel {
	m := &listingsModel{svc: svc, source: source, state: listingsStateList}
	// reloadList leaves the list untouched when loading fails (for example
	// favourites while anonymous), so it must start from a usable model or
	// a later SetSize dereferences a nil delegate.
	m.list = list.New(nil, list.NewDefaultDelegate(), 0, 0)
	m.reloadList()
	return m
}

func (m *listingsModel) SetSize(w, h int) {
	m.width, m.height = w, h
	m.list.SetSize(w, h-3)
}

func (m *listingsModel) Update(msg tea.Msg) tea.Cmd {
	if m.err != nil {
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch msg.String() {
			case "esc", "q", "enter":
				m.err = nil
				if m.state == listingsStateList {
					m.Done = true
					return nil
				}
				m.state = listingsStateList
				m.form = nil
				m.selected = nil
				m.reloadList()
			}
		}
		return nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "q":
			if m.state == listingsStateList {
				m.Done = true
				return nil
			}
		case "esc":
			m.back()
			return nil
		}
	}

	switch m.state {
	case listingsStateList:
		return m.updateList(msg)
	case listingsStateDetail:
		return m.updateDetail(msg)
	case listingsStateBid:
		return m.updateBidForm(msg)
	default:
		return nil
	}
}

func (m *listingsModel) back() {
	switch m.state {
	case listingsStateList:
		m.Done = true
	case listingsStateDetail:
		m.state = listingsStateList
		m.selected = nil
		m.status = ""
		m.reloadList()
	case listingsStateBid:
		m.state = listingsStateDetail
		m.form = nil
	}
}

func (m *listingsModel) updateList(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "s":
			if m.source == sourceAll {
				m.orderIdx = (m.orderIdx + 1) % len(orderCycle)
				m.reloadList()
			}
			return nil
		case "enter":
			it, ok := m.list.SelectedItem().(listingItem)
			if !ok {
				return cmd
			}
			m.open(it.id)
			return nil
		}
	}

	return cmd
}

// open registers the view, records the visit for a signed-in user and
// switches to the detail screen.
func (m *listingsModel) open(id int) {
	if err := m.svc.RegisterView(id); err != nil {
		m.err = err
		return
	}

	l, err := m.svc.GetListing(id)
	if err != nil {
		m.err = err
		return
	}
	bids, err := m.svc.ListBids(id)
	if err != nil {
		m.err = err
		return
	}

	m.selected = l
	m.bids = bids
	m.status = ""
	m.state = listingsStateDetail
}

func (m *listingsModel) updateDetail(msg tea.Msg) tea.Cmd {
	msgKey, ok := msg.(tea.KeyMsg)
	if !ok || m.selected == nil {
		return nil
	}

	switch msgKey.String() {
	case "f":
		m.toggleFavourite()
	case "b":
		m.startBid()
	case "x":
		m.deleteSelected()
	}
	return nil
}

func (m *listingsModel) toggleFavourite() {
	u, err := m.svc.CurrentUser()
	if err != nil {
		m.status = "sign in to star listings"
		return
	}

	starred, err := m.svc.Listings.IsFavourite(u.ID, m.selected.ID)
	if err != nil {
		m.err = err
		return
	}
	if starred {
		err = m.svc.RemoveFavourite(u.ID, m.selected.ID)
		m.status = "removed from favourites"
	} else {
		err = m.svc.AddFavourite(u.ID, m.selected.ID)
		m.status = "added to favourites"
	}
	if err != nil {
		m.err = err
	}
}

func (m *listingsModel) deleteSelected() {
	err := m.svc.DeleteListing(m.selected.ID)
	switch {
	case errors.Is(err, market.ErrNotAuthenticated):
		m.status = "sign in to delete your listings"
	case errors.Is(err, listing.ErrNotOwner):
		m.status = "only the owner can delete a listing"
	case err != nil:
		m.err = err
	default:
		m.state = listingsStateList
		m.selected = nil
		m.reloadList()
	}
}

func (m *listingsModel) startBid() {
	if _, err := m.svc.CurrentUser(); err != nil {
		m.status = "sign in to place bids"
		return
	}

	m.state = listingsStateBid
	m.bidAmount = ""
	m.bidSave = true
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Bid amount").Value(&m.bidAmount).Validate(func(s string) error {
				_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
				if err != nil {
					return fmt.Errorf("enter a number")
				}
				return nil
			}),
		),
		huh.NewGroup(
			huh.NewConfirm().Title("Place bid?").Value(&m.bidSave),
		),
	)
}

func (m *listingsModel) updateBidForm(msg tea.Msg) tea.Cmd {
	done, cmd, err := runForm(&m.form, msg)
	if err != nil {
		m.err = err
		return nil
	}
	if done {
		if m.bidSave && m.selected != nil {
			amount, _ := strconv.ParseFloat(strings.TrimSpace(m.bidAmount), 64)
			if err := m.svc.PlaceBid(m.selected.ID, amount); err != nil {
				m.err = err
				return nil
			}
			m.status = "bid placed"
		}
		m.form = nil
		m.state = listingsStateDetail
		bids, err := m.svc.ListBids(m.selected.ID)
		if err == nil {
			m.bids = bids
		}
		return nil
	}
	return cmd
}

func (m *listingsModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("Listings error: %v\n\nPress Enter/Esc to go back.", m.err)
	}

	switch m.state {
	case listingsStateList:
		hint := "\n(enter to open, q to go back)"
		if m.source == sourceAll {
			hint = fmt.Sprintf("\n(enter to open, s to sort [%s], q to go back)", orderCycle[m.orderIdx])
		}
		return m.list.View() + hint
	case listingsStateDetail:
		return m.detailView()
	default:
		return m.form.View() + "\n\n(esc to go back)"
	}
}

func (m *listingsModel) detailView() string {
	l := m.selected
	if l == nil {
		return "No listing selected\n\n(esc to go back)"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", titleStyle.Render(l.Title))
	fmt.Fprintf(&b, "Price:     %s (%s)\n", formatPrice(l.Price), l.PriceType)
	fmt.Fprintf(&b, "Condition: %s\n", l.Condition)
	fmt.Fprintf(&b, "Location:  %s\n", l.Location)
	fmt.Fprintf(&b, "Machine:   %s %s (%s, %d)\n", l.Make, l.Model, l.VehicleType, l.Year)
	fmt.Fprintf(&b, "Power:     %s\n", l.FuelOrPower)
	if l.Weight != nil {
		fmt.Fprintf(&b, "Weight:    %.0f kg\n", *l.Weight)
	}
	fmt.Fprintf(&b, "Views:     %d\n", l.Views)
	fmt.Fprintf(&b, "Seller:    user #%d\n", l.UserID)
	if l.Description != nil {
		fmt.Fprintf(&b, "\n%s\n", *l.Description)
	}

	if len(m.bids) > 0 {
		b.WriteString("\nBids:\n")
		for _, bid := range m.bids {
			fmt.Fprintf(&b, "  %s: %.2f\n", bid.Username, bid.Amount)
		}
	}

	if m.status != "" {
		b.WriteString("\n" + statusStyle.Render(m.status))
	}
	b.WriteString("\n(f favourite, b bid, x delete, esc back)")
	return b.String()
}

func formatPrice(p *float64) string {
	if p == nil {
		return "on request"
	}
	return fmt.Sprintf("%.2f", *p)
}

func (m *listingsModel) reloadList() {
	var (
		listings []*listing.Listing
		err      error
		title    string
	)

	switch m.source {
	case sourceFavourites:
		title = "My favourites"
		listings, err = m.forCurrentUser(m.svc.GetFavouriteListings)
	case sourceVisited:
		title = "Visit history"
		listings, err = m.forCurrentUser(m.svc.GetVisitedListings)
	default:
		title = "Listings"
		listings, err = m.svc.ListListings(orderCycle[m.orderIdx])
	}
	if err != nil {
		m.err = err
		return
	}

	items := make([]list.Item, 0, len(listings))
	for _, l := range listings {
		desc := fmt.Sprintf("%s - %s, %s - %d views", formatPrice(l.Price), l.Condition, l.Location, l.Views)
		items = append(items, listingItem{id: l.ID, title: l.Title, desc: desc})
	}

	m.list = list.New(items, list.NewDefaultDelegate(), m.width, m.height-3)
	m.list.SetShowStatusBar(false)
	m.list.SetFilteringEnabled(true)
	m.list.SetShowHelp(true)
	m.list.Title = title
}

func (m *listingsModel) forCurrentUser(fetch func(int) ([]*listing.Listing, error)) ([]*listing.Listing, error) {
	u, err := m.svc.CurrentUser()
	if err != nil {
		return nil, err
	}
	return fetch(u.ID)
}
