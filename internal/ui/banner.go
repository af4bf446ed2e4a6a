package ui

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"github.com/fr4nk3nst1ner/offersleuth/internal/models"
	"github.com/fr4nk3nst1ner/offersleuth/internal/utils"
)

const bannerText = `
 ██████╗ ███████╗███████╗███████╗██████╗ ███████╗██╗     ███████╗██╗   ██╗████████╗██╗  ██╗
██╔═══██╗██╔════╝██╔════╝██╔════╝██╔══██╗██╔════╝██║     ██╔════╝██║   ██║╚══██╔══╝██║  ██║
██║   ██║█████╗  █████╗  █████╗  ██████╔╝███████╗██║     █████╗  ██║   ██║   ██║   ███████║
██║   ██║██╔══╝  ██╔══╝  ██╔══╝  ██╔══██╗╚════██║██║     ██╔══╝  ██║   ██║   ██║   ██╔══██║
╚██████╔╝██║     ██║     ███████╗██║  ██║███████║███████╗███████╗╚██████╔╝   ██║   ██║  ██║
 ╚═════╝ ╚═╝     ╚═╝     ╚══════╝╚═╝  ╚═╝╚══════╝╚══════╝╚══════╝ ╚═════╝    ╚═╝   ╚═╝  ╚═╝
`

// ColorizeText applies a random color fade to the input text
func ColorizeText(text string) string {
	random := rand.New(rand.NewSource(time.Now().UnixNano()))

	startColor := pterm.NewRGB(uint8(random.Intn(256)), uint8(random.Intn(256)), uint8(random.Intn(256)))
	endColor := pterm.NewRGB(uint8(random.Intn(256)), uint8(random.Intn(256)), uint8(random.Intn(256)))

	runes := []rune(text)
	var b strings.Builder
	for i, r := range runes {
		b.WriteString(startColor.Fade(0, float32(len(runes)), float32(i), endColor).Sprint(string(r)))
	}
	return b.String()
}

// PrintBanner displays the application banner
func PrintBanner(silence bool) {
	if !silence {
		fmt.Println(ColorizeText(bannerText))
	}
}

// ColorizeSalary colors a salary relative to the qualifying offer
func ColorizeSalary(salary, offer float64) string {
	formatted := utils.FormatSalary(salary)
	switch {
	case offer <= 0:
		return formatted
	case salary >= offer:
		return pterm.Green(formatted)
	case salary >= offer*0.75:
		return pterm.Yellow(formatted)
	default:
		return pterm.Red(formatted)
	}
}

// OfferLine is the console line reporting one threshold estimate
func OfferLine(source string, offer float64) string {
	return fmt.Sprintf("Qualifying offer (%s): %s", source, utils.FormatSalary(offer))
}

// PrintOffer reports the qualifying offer from both computation paths
func PrintOffer(inMemory, query float64) {
	pterm.DefaultSection.Println("Qualifying offer")
	pterm.Println(pterm.Green(OfferLine("in-memory", inMemory)))
	pterm.Println(pterm.Green(OfferLine("sql", query)))
}

// PrintScrapeSummary reports how many encyclopedia pages could be fetched
func PrintScrapeSummary(p models.ScrapeProgress) {
	pterm.Info.Printfln("Fetched %d player pages, %d failed", p.Fetched, p.Failed)
}

// AveragesTable lays out per-category averages; missing averages print as "-"
func AveragesTable(aggs []models.CategoryAggregate, offer float64) pterm.TableData {
	data := pterm.TableData{{"Position", "Players", "Avg Salary", "Avg Age", "Stat", "Avg"}}
	for _, agg := range aggs {
		salary := "-"
		if agg.AvgSalary != nil {
			salary = ColorizeSalary(*agg.AvgSalary, offer)
		}
		for i, s := range models.StatsFor(agg.Category) {
			if s == models.StatAge {
				continue
			}
			row := []string{"", "", "", "", s.Label(), formatStat(s, agg.Average(s))}
			if i == 1 {
				row[0] = agg.Category
				row[1] = fmt.Sprint(agg.Members)
				row[2] = salary
				row[3] = formatStat(models.StatAge, agg.Average(models.StatAge))
			}
			data = append(data, row)
		}
	}
	return data
}

// PrintAverages renders the per-category averages table
func PrintAverages(aggs []models.CategoryAggregate, offer float64) error {
	pterm.DefaultSection.Println("Averages by position")
	return pterm.DefaultTable.WithHasHeader().WithData(AveragesTable(aggs, offer)).Render()
}

func formatStat(s models.Stat, v *float64) string {
	if v == nil {
		return "-"
	}
	switch s {
	case models.StatBattingAverage:
		return fmt.Sprintf("%.3f", *v)
	case models.StatERA:
		return fmt.Sprintf("%.2f", *v)
	default:
		return fmt.Sprintf("%.1f", *v)
	}
}

// PrintPlots lists the chart files written by the run
func PrintPlots(paths []string) {
	if len(paths) == 0 {
		return
	}
	pterm.DefaultSection.Println("Charts")
	for _, path := range paths {
		pterm.Success.Println(path)
	}
}
