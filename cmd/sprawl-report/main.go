package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/MohammedBaz/MVPUrbanSprawl/internal/citydata"
	"github.com/MohammedBaz/MVPUrbanSprawl/internal/config"
	"github.com/MohammedBaz/MVPUrbanSprawl/internal/db"
	"github.com/MohammedBaz/MVPUrbanSprawl/internal/indicator"
	"github.com/MohammedBaz/MVPUrbanSprawl/internal/report"
	"github.com/MohammedBaz/MVPUrbanSprawl/internal/units"
)

var (
	dbFile      = flag.String("db", "urban_sprawl.db", "SQLite database file")
	csvFile     = flag.String("csv", "", "Seed the database from this CSV file before running")
	city        = flag.String("city", "", "City to report on")
	baseYear    = flag.Int("base-year", 0, "Base year of the analysis period")
	currentYear = flag.Int("current-year", 0, "Current year of the analysis period")
	targetYear  = flag.Int("target-year", 0, "Optional projection target year (0 disables projection)")
	landRate    = flag.Float64("land-rate", 0, "Annual land growth rate for projection (0 uses the configured default)")
	popRate     = flag.Float64("pop-rate", 0, "Annual population growth rate for projection (0 uses the configured default)")
	unitsFlag   = flag.String("units", "km2", "Presentation units: km2, m2 or ha")
	outDir      = flag.String("out", "reports", "Directory for generated plots")
	listRecent  = flag.Bool("list", false, "List recent reports and exit")
)

func main() {
	flag.Parse()

	database, err := db.NewDB(*dbFile)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	if *listRecent {
		reports, err := database.RecentReports(*city, 20)
		if err != nil {
			log.Fatalf("failed to list reports: %v", err)
		}
		for _, r := range reports {
			target := "-"
			if r.TargetYear != nil {
				target = fmt.Sprintf("%d", *r.TargetYear)
			}
			fmt.Printf("%s  %-16s %d-%d target=%s  %s\n",
				r.CreatedAt.Format("2006-01-02 15:04"), r.City, r.BaseYear, r.CurrentYear, target, r.Filepath)
		}
		return
	}

	if *csvFile != "" {
		records, err := citydata.LoadFile(*csvFile)
		if err != nil {
			log.Fatalf("failed to load %s: %v", *csvFile, err)
		}
		if err := database.LoadSnapshot(records); err != nil {
			log.Fatalf("failed to load snapshot: %v", err)
		}
		log.Printf("loaded %d cities from %s", len(records), *csvFile)
	}

	if *city == "" || *baseYear == 0 || *currentYear == 0 {
		flag.Usage()
		os.Exit(2)
	}
	if !units.IsValid(*unitsFlag) {
		log.Fatalf("invalid units %q, valid units: %s", *unitsFlag, units.GetValidUnitsString())
	}

	cfg := config.Empty()
	policy := cfg.Thresholds()

	base, current, err := database.ObservationPair(*city, *baseYear, *currentYear)
	if err != nil {
		log.Fatalf("failed to look up observations: %v", err)
	}

	rates, err := indicator.ComputeRates(base, current)
	if err != nil {
		log.Fatalf("failed to compute rates: %v", err)
	}
	ratio := indicator.Ratio(rates.LCR, rates.PGR, policy)

	fmt.Printf("%s %d-%d\n", *city, *baseYear, *currentYear)
	fmt.Printf("  built-up area: %.1f -> %.1f %s\n",
		units.ConvertArea(base.BuiltUpArea, *unitsFlag), units.ConvertArea(current.BuiltUpArea, *unitsFlag), *unitsFlag)
	fmt.Printf("  population:    %.0f -> %.0f\n", base.Population, current.Population)
	fmt.Printf("  LCR=%.4f PGR=%.4f\n", rates.LCR, rates.PGR)
	if ratio.Defined() {
		fmt.Printf("  LCRPGR=%.4f (%s)\n", *ratio.LCRPGR, ratio.Classification)
	} else {
		fmt.Printf("  LCRPGR undefined (%s)\n", ratio.Classification)
	}

	params := report.Params{
		City:        *city,
		BaseYear:    *baseYear,
		CurrentYear: *currentYear,
		LandRate:    cfg.GetDefaultLandRate(),
		PopRate:     cfg.GetDefaultPopRate(),
		Units:       *unitsFlag,
	}
	if *landRate != 0 {
		params.LandRate = *landRate
	}
	if *popRate != 0 {
		params.PopRate = *popRate
	}
	if *targetYear != 0 {
		params.TargetYear = targetYear

		projection, err := indicator.Project(base, current, *targetYear, params.LandRate, params.PopRate, policy)
		if err != nil {
			log.Fatalf("failed to project: %v", err)
		}
		fmt.Printf("projection to %d (land=%.3f pop=%.3f)\n", *targetYear, params.LandRate, params.PopRate)
		fmt.Printf("  built-up area: %.1f %s\n", units.ConvertArea(projection.ProjectedBuiltUpArea, *unitsFlag), *unitsFlag)
		fmt.Printf("  population:    %.0f\n", projection.ProjectedPopulation)
		if projection.IndicatorAvailable && projection.Ratio.Defined() {
			fmt.Printf("  LCRPGR=%.4f (%s)\n", *projection.Ratio.LCRPGR, projection.Ratio.Classification)
		} else {
			fmt.Printf("  LCRPGR unavailable (%s)\n", projection.Ratio.Classification)
		}
	}

	generator := report.NewGenerator(database, *outDir, policy)
	generated, err := generator.Generate(params)
	if err != nil {
		log.Fatalf("failed to generate report: %v", err)
	}
	fmt.Printf("report %s written to %s\n", generated.RunID, generated.Filepath)
}
