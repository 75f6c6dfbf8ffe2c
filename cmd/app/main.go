package main

import (
	"fmt"
	"os"

	rentalservice "car-hire/internal/rental-service"
)

func main() {
	if err := rentalservice.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "rental-service: %v\n", err)
		os.Exit(1)
	}
}
