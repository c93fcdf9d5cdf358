package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/shrutiikadam/UrbanDepot1/internal/application"
	bookingDomain "github.com/shrutiikadam/UrbanDepot1/internal/domain/booking"
	"github.com/shrutiikadam/UrbanDepot1/internal/domain/geo"
)

const usage = `commands:
  query <text>               set the search box text
  mode <DRIVING|WALKING|BICYCLING|TRANSIT>
  search                     search for the query
  nearby                     search near you and show directions
  select <name>;<lat>;<lng>  pick an autocomplete suggestion
  click <place-id>           click a catalog marker
  close                      close the info popup
  directions [mode]          directions to the selected place
  catalog                    reload catalog markers
  book                       hand the selection to the reservation form
  fare <in-date> <in-time> <out-date> <out-time> <vehicle>
  state                      print the session
  quit`

// app drives one map session from a line-oriented input feed.
type app struct {
	session *application.MapSession
	handoff *application.HandoffService
	fares   *application.FareService
	catalog application.CatalogSource
	out     io.Writer
	logger  *zap.Logger
}

func (a *app) start(ctx context.Context) error {
	if err := a.session.Start(ctx); err != nil {
		return err
	}
	if a.catalog != nil {
		if err := a.session.RefreshCatalog(ctx, a.catalog); err != nil {
			a.logger.Error("failed to load catalog", zap.Error(err))
		}
	}
	a.session.Wait()
	return nil
}

// run reads commands until EOF, "quit" or ctx is done.
func (a *app) run(ctx context.Context, in io.Reader) error {
	a.println(usage)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return nil
		}
		if err := a.dispatch(ctx, line); err != nil {
			a.println("error: " + err.Error())
		}
		a.session.Wait()
	}
	return scanner.Err()
}

func (a *app) dispatch(ctx context.Context, line string) error {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "query":
		a.session.SetQuery(arg)
		return nil
	case "mode":
		mode, err := geo.ParseTravelMode(arg)
		if err != nil {
			return err
		}
		return a.session.SetTravelMode(mode)
	case "search":
		if arg != "" {
			a.session.SetQuery(arg)
		}
		return a.session.Search(ctx)
	case "nearby":
		return a.session.SearchNearby(ctx)
	case "select":
		p, err := parseSuggestion(arg)
		if err != nil {
			return err
		}
		return a.session.SelectPlace(ctx, p)
	case "click":
		return a.session.ClickMarker(ctx, arg)
	case "close":
		return a.session.ClosePopup()
	case "directions":
		mode, err := geo.ParseTravelMode(arg)
		if err != nil {
			return err
		}
		if arg == "" {
			mode = ""
		}
		return a.session.Directions().Request(ctx, mode)
	case "catalog":
		if a.catalog == nil {
			return errors.New("catalog is not enabled")
		}
		return a.session.RefreshCatalog(ctx, a.catalog)
	case "book":
		draft, err := a.handoff.ConfirmBooking(ctx, a.session.Selection())
		if err != nil {
			return err
		}
		a.println(fmt.Sprintf("reservation form opened for %q (%s)", draft.PlaceName, draft.Address))
		return nil
	case "fare":
		return a.fare(arg)
	case "state":
		snap := a.session.Snapshot()
		a.println(fmt.Sprintf("state=%s center=%s zoom=%d markers=%d mode=%s search_enabled=%t",
			snap.State, snap.Center, snap.Zoom, len(snap.Markers), snap.Mode, snap.SearchEnabled))
		if snap.Selection.HasPlace() {
			a.println(fmt.Sprintf("selected=%q address=%q", snap.Selection.Place.DisplayName(), snap.Selection.Address))
		}
		return nil
	case "help":
		a.println(usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) fare(arg string) error {
	fields := strings.Fields(arg)
	if len(fields) != 5 {
		return errors.New("usage: fare <in-date> <in-time> <out-date> <out-time> <vehicle>")
	}
	r := bookingDomain.Reservation{
		CheckinDate:  fields[0],
		CheckinTime:  fields[1],
		CheckoutDate: fields[2],
		CheckoutTime: fields[3],
		VehicleType:  bookingDomain.VehicleType(strings.ToLower(fields[4])),
	}
	fare, err := a.fares.Quote(r)
	if err != nil {
		return err
	}
	a.println(fmt.Sprintf("%.2f h x %d/h + %.0f%% platform fee = %s",
		fare.BillableHours, fare.HourlyRate, fare.PlatformFeePct*100, bookingDomain.FormatSubunits(fare.TotalAmount)))
	return nil
}

func (a *app) println(s string) {
	_, _ = fmt.Fprintln(a.out, s)
}

// parseSuggestion reads "name;lat;lng". Missing coordinates yield a place
// without geometry.
func parseSuggestion(arg string) (geo.Place, error) {
	parts := strings.Split(arg, ";")
	name := strings.TrimSpace(parts[0])
	if len(parts) < 3 {
		return geo.Place{Name: name, Source: geo.SourceSearch}, nil
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return geo.Place{}, fmt.Errorf("invalid latitude: %w", err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil {
		return geo.Place{}, fmt.Errorf("invalid longitude: %w", err)
	}
	return geo.NewSearchPlace("", name, lat, lng), nil
}
