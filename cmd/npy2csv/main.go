package main

import (
	"fmt"
	"log"
	"os"

	"github.com/KyungWonPark/Connectome/internal/io"
)

func main() {
	if len(os.Args) != 2 {
		log.Fatalf("usage: %s file.npy", os.Args[0])
	}
	fileName := os.Args[1]

	npyFile, err := io.NpytoMat64(fileName)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("Reading npy file complete")

	if err := io.Mat64toCSV(fileName+".csv", npyFile); err != nil {
		log.Fatal(err)
	}
	fmt.Println("Written to", fileName+".csv")
}
