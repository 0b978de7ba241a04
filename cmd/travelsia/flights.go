package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DevLuiggi/travelsia-go/pkg/format"
	"github.com/DevLuiggi/travelsia-go/pkg/gateway"
	"github.com/DevLuiggi/travelsia-go/pkg/iata"
)

func newSearchCmd() *cobra.Command {
	var params gateway.SearchParams
	var selectID string

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search flight offers",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !iata.Valid(params.Origin) || !iata.Valid(params.Destination) {
				return fmt.Errorf("origin and destination must be 3-letter IATA codes")
			}

			ctx, cancel := cmdContext()
			defer cancel()

			result, err := app.Flights.SearchFlights(ctx, params)
			if err != nil {
				return fmt.Errorf("%s", gateway.UserMessage(err))
			}

			st := app.Flights.State()
			fmt.Printf("Search %s: %s -> %s, %d offer(s)\n",
				result.SearchID,
				iata.Label(st.Params.Origin),
				iata.Label(st.Params.Destination),
				len(result.Offers))
			for _, offer := range result.Offers {
				printOffer(offer)
			}

			if selectID != "" {
				for i := range result.Offers {
					if result.Offers[i].ID == selectID {
						if err := app.Flights.SelectOffer(&result.Offers[i]); err != nil {
							return err
						}
						fmt.Printf("Selected offer %s\n", selectID)
						return nil
					}
				}
				return fmt.Errorf("offer %s not found in results", selectID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&params.Origin, "from", "", "origin IATA code")
	cmd.Flags().StringVar(&params.Destination, "to", "", "destination IATA code")
	cmd.Flags().StringVar(&params.DepartureDate, "depart", "", "departure date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&params.ReturnDate, "return", "", "return date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&params.Adults, "adults", 1, "adult passenger count")
	cmd.Flags().StringVar(&params.TravelPurpose, "purpose", "", "travel purpose")
	cmd.Flags().Float64Var(&params.EstimatedBudget, "budget", 0, "estimated budget")
	cmd.Flags().StringVar(&selectID, "select", "", "offer ID to select from the results")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("depart")
	return cmd
}

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent flight searches",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()

			if err := app.Flights.FetchSearchHistory(ctx, limit); err != nil {
				return fmt.Errorf("%s", gateway.UserMessage(err))
			}
			printHistory(app.Flights.State().History)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "number of searches to list")
	return cmd
}

func newDetailCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detail <search-id>",
		Short: "Show one past search with its offer snapshots",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()

			detail, err := app.Flights.FetchSearchDetail(ctx, args[0])
			if err != nil {
				return fmt.Errorf("%s", gateway.UserMessage(err))
			}

			fmt.Printf("Search %s: %s -> %s on %s, %d adult(s)\n",
				detail.ID,
				iata.Label(detail.Origin), iata.Label(detail.Destination),
				format.Date(detail.DepartureDate), detail.Adults)
			for _, snap := range detail.Snapshots {
				printOffer(snap.OfferData)
			}
			return nil
		},
	}
}

func printOffer(offer gateway.FlightOffer) {
	fmt.Printf("  offer %s  %s", offer.ID, format.Price(offer.Price.GrandTotal, offer.Price.Currency))
	if len(offer.ValidatingAirlineCodes) > 0 {
		fmt.Printf("  [%s]", offer.ValidatingAirlineCodes[0])
	}
	fmt.Println()
	for _, itin := range offer.Itineraries {
		for _, seg := range itin.Segments {
			fmt.Printf("    %s %s -> %s %s  %s %s  %s\n",
				seg.Departure.IATACode, format.Time(seg.Departure.At),
				seg.Arrival.IATACode, format.Time(seg.Arrival.At),
				seg.CarrierCode, seg.Number,
				format.Duration(seg.Duration))
		}
		fmt.Printf("    total %s, %s\n", format.Duration(itin.Duration), stopsOf(itin))
	}
}

func stopsOf(itin gateway.FlightItinerary) string {
	return format.Stops(len(itin.Segments) - 1)
}

func printHistory(history []gateway.SearchHistory) {
	if len(history) == 0 {
		fmt.Println("No past searches.")
		return
	}
	fmt.Println("Recent searches:")
	for _, h := range history {
		line := fmt.Sprintf("  %s  %s -> %s  %s", h.ID, h.Origin, h.Destination, format.Date(h.DepartureDate))
		if h.ReturnDate != "" {
			line += " / " + format.Date(h.ReturnDate)
		}
		fmt.Println(line)
	}
}
