package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DevLuiggi/travelsia-go/pkg/format"
	"github.com/DevLuiggi/travelsia-go/pkg/gateway"
)

func newItineraryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "itinerary",
		Short: "AI-generated day-by-day trip plans",
	}
	cmd.AddCommand(newItineraryGenerateCmd(), newItineraryShowCmd(), newItineraryClearCmd())
	return cmd
}

func newItineraryGenerateCmd() *cobra.Command {
	var req gateway.ItineraryRequest
	var offerID string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a budget-constrained trip plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()

			// A past search can anchor the plan to a concrete offer.
			if req.SearchID != "" && offerID != "" {
				detail, err := app.Flights.FetchSearchDetail(ctx, req.SearchID)
				if err != nil {
					return fmt.Errorf("%s", gateway.UserMessage(err))
				}
				info := flightInfoFromDetail(detail, offerID)
				if info == nil {
					return fmt.Errorf("offer %s not found in search %s", offerID, req.SearchID)
				}
				req.FlightOffer = info
			}

			fmt.Printf("Generating a %d-day plan for %s (this can take a minute)...\n",
				format.TripDays(req.StartDate, req.EndDate), req.Destination)

			resp, err := app.Itinerary.Generate(ctx, req)
			if err != nil {
				return fmt.Errorf("%s", gateway.UserMessage(err))
			}

			printItinerary(resp)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Destination, "destination", "", "destination city")
	cmd.Flags().StringVar(&req.StartDate, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&req.EndDate, "end", "", "end date (YYYY-MM-DD)")
	cmd.Flags().Float64Var(&req.Budget, "budget", 0, "total trip budget")
	cmd.Flags().StringVar(&req.SearchID, "search-id", "", "past flight search to anchor the plan")
	cmd.Flags().StringVar(&offerID, "offer-id", "", "offer from the search to plan around")
	_ = cmd.MarkFlagRequired("destination")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	_ = cmd.MarkFlagRequired("budget")
	return cmd
}

func newItineraryShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the held trip plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			st := app.Itinerary.State()
			if st.Itinerary == nil {
				fmt.Println("No itinerary held. Run 'travelsia itinerary generate' first.")
				return nil
			}
			if st.Request != nil {
				fmt.Printf("Plan for %s, %s to %s\n\n",
					st.Request.Destination, format.Date(st.Request.StartDate), format.Date(st.Request.EndDate))
			}
			printItinerary(st.Itinerary)
			return nil
		},
	}
}

func newItineraryClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Discard the held request and plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Itinerary.ClearItinerary()
			fmt.Println("Itinerary cleared.")
			return nil
		},
	}
}

// flightInfoFromDetail condenses an offer snapshot into the flight context
// the generator accepts.
func flightInfoFromDetail(detail *gateway.SearchDetail, offerID string) *gateway.ItineraryFlightInfo {
	for _, snap := range detail.Snapshots {
		offer := snap.OfferData
		if offer.ID != offerID || len(offer.Itineraries) == 0 {
			continue
		}
		segments := offer.Itineraries[0].Segments
		if len(segments) == 0 {
			continue
		}
		info := &gateway.ItineraryFlightInfo{
			Price:     offer.Price.GrandTotal,
			Currency:  offer.Price.Currency,
			Departure: segments[0].Departure.At,
			Arrival:   segments[len(segments)-1].Arrival.At,
		}
		if len(offer.ValidatingAirlineCodes) > 0 {
			info.Airline = offer.ValidatingAirlineCodes[0]
		}
		return info
	}
	return nil
}

func printItinerary(resp *gateway.ItineraryResponse) {
	fmt.Println()
	fmt.Println(resp.Summary)

	if rf := resp.RecommendedFlight; rf != nil {
		fmt.Printf("\nRecommended flight: %s, %s (%s -> %s)\n  %s\n",
			rf.Airline, rf.Price, format.DateTime(rf.Departure), format.DateTime(rf.Arrival), rf.Reason)
	}

	bb := resp.BudgetBreakdown
	fmt.Println("\nBudget breakdown:")
	fmt.Printf("  Flight:          %s\n", bb.Flight)
	fmt.Printf("  Accommodation:   %s\n", bb.Accommodation)
	fmt.Printf("  Activities:      %s\n", bb.Activities)
	fmt.Printf("  Food/transport:  %s\n", bb.FoodTransport)
	fmt.Printf("  Total:           %s\n", bb.Total)

	for _, day := range resp.Itinerary {
		fmt.Printf("\nDay %d - %s\n", day.Day, format.Date(day.Date))
		for _, act := range day.Activities {
			fmt.Printf("  [%s] %s (%s)\n      %s\n", act.Time, act.Activity, act.Cost, act.Description)
		}
	}

	if resp.Explanation != "" {
		fmt.Println()
		fmt.Println(resp.Explanation)
	}
}
