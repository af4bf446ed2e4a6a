package main

import "fmt"

// printExamples displays usage examples for the program
func printExamples() {
	fmt.Println("\n📋 OfferSleuth Usage Examples 📋")
	fmt.Println("\n1. Estimate the qualifying offer from the 125 highest salaries:")
	fmt.Println("   offersleuth offer")

	fmt.Println("\n2. Run the whole pipeline with four concurrent page fetches and debug logging:")
	fmt.Println("   offersleuth run --workers 4 --debug")

	fmt.Println("\n3. Average the top 50 salaries, stage into a separate database and skip charts:")
	fmt.Println("   offersleuth run --top 50 --db top50.db --no-plots")

	fmt.Println("\n4. Redraw the charts from the last run into another directory, without the banner:")
	fmt.Println("   offersleuth report --out charts --silence")

	fmt.Println("\n5. Load settings (source URL, proxy, rate limit, chart size) from a YAML file:")
	fmt.Println("   offersleuth run --config offersleuth.yaml")
}
