package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/hotel-scraper/internal/entity"
	"github.com/user/hotel-scraper/internal/usecase"
	"github.com/user/hotel-scraper/pkg/utils"
)

var (
	checkIn    string
	year       int
	month      int
	startDay   int
	startMonth int
	endMonth   int
	dateList   []string
)

func init() {
	now := time.Now()

	dayCmd.Flags().StringVar(&checkIn, "checkin", utils.FormatDate(now), "Check-in date (YYYY-MM-DD).")

	monthCmd.Flags().IntVar(&year, "year", now.Year(), "Year of the month to scrape.")
	monthCmd.Flags().IntVar(&month, "month", int(now.Month()), "Month to scrape (1-12).")
	monthCmd.Flags().IntVar(&startDay, "start-day", 1, "First day of the month to scrape.")

	datesCmd.Flags().StringSliceVar(&dateList, "dates", nil, "Comma separated check-in dates (YYYY-MM-DD).")
	datesCmd.MarkFlagRequired("dates")

	japanCmd.Flags().IntVar(&year, "year", now.Year(), "Year to sweep.")
	japanCmd.Flags().IntVar(&startMonth, "start-month", int(now.Month()), "First month of the sweep.")
	japanCmd.Flags().IntVar(&endMonth, "end-month", 12, "Last month of the sweep.")

	missingCmd.Flags().IntVar(&year, "year", now.Year(), "Year whose missing stay dates are re-scraped.")

	rootCmd.AddCommand(dayCmd, monthCmd, datesCmd, japanCmd, missingCmd)
}

var dayCmd = &cobra.Command{
	Use:   "day [--checkin YYYY-MM-DD]",
	Short: "Scrapes a single check-in date and saves the rows.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := checkNights(); err != nil {
			fail("invalid flags", err)
		}
		checkOut, err := utils.CheckOut(checkIn, nights)
		if err != nil {
			fail("invalid --checkin", err)
		}

		rows, err := pipeline.Scraper.ScrapeDay(cmd.Context(), details.Request(checkIn, checkOut))
		if err != nil {
			fail("day scrape failed", err)
		}
		save(cmd, rows)
	},
}

var monthCmd = &cobra.Command{
	Use:   "month [--year YYYY] [--month M] [--start-day D]",
	Short: "Scrapes every remaining day of a month and saves the rows.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := checkNights(); err != nil {
			fail("invalid flags", err)
		}

		start := time.Now()
		rows, err := pipeline.Orchestrator.ScrapeMonth(cmd.Context(), usecase.MonthRequest{
			Details:  details,
			Year:     year,
			Month:    time.Month(month),
			StartDay: startDay,
			Nights:   nights,
		})
		if err != nil {
			fail("month scrape failed", err)
		}
		save(cmd, rows)
		log.Info("month finished", zap.Duration("elapsed", time.Since(start)))
	},
}

var datesCmd = &cobra.Command{
	Use:   "dates --dates YYYY-MM-DD,...",
	Short: "Scrapes an explicit list of check-in dates and saves the rows.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := checkNights(); err != nil {
			fail("invalid flags", err)
		}
		for i := range dateList {
			dateList[i] = strings.TrimSpace(dateList[i])
		}

		rows, err := pipeline.Orchestrator.ScrapeDates(cmd.Context(), details, dateList, nights)
		if err != nil {
			fail("dates scrape failed", err)
		}
		save(cmd, rows)
	},
}

var japanCmd = &cobra.Command{
	Use:   "japan [--year YYYY] [--start-month M] [--end-month M]",
	Short: "Sweeps every Japanese prefecture month by month, saving as it goes.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := checkNights(); err != nil {
			fail("invalid flags", err)
		}

		start := time.Now()
		saved, err := pipeline.Orchestrator.SweepRegions(cmd.Context(), usecase.SweepRequest{
			Details:    details,
			Regions:    entity.JapanRegions,
			Year:       year,
			StartMonth: time.Month(startMonth),
			EndMonth:   time.Month(endMonth),
			Nights:     nights,
		})
		if err != nil {
			fail(fmt.Sprintf("sweep stopped after %d rows", saved), err)
		}
		log.Info("sweep finished", zap.Int("rows", saved), zap.Duration("elapsed", time.Since(start)))
	},
}

var missingCmd = &cobra.Command{
	Use:   "missing [--year YYYY]",
	Short: "Re-scrapes stay dates missing from today's batch for --city.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		result, err := pipeline.Reconciler.Reconcile(cmd.Context(), details, year)
		if err != nil {
			fail("reconciliation failed", err)
		}
		log.Info("reconciliation finished",
			zap.Strings("missing", result.Missing),
			zap.Strings("recovered", result.Recovered),
			zap.Int("rows", result.Rows),
		)
	},
}

func save(cmd *cobra.Command, rows []entity.HotelRow) {
	if len(rows) == 0 {
		log.Warn("nothing to save")
		return
	}
	if err := pipeline.Rows.Save(cmd.Context(), rows); err != nil {
		fail("failed to save rows", err)
	}
	log.Info("rows saved", zap.Int("rows", len(rows)))
}
