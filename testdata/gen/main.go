// Command gen writes the sample employee data set in every input format
// csvpresto reads. Run it from the repository root.
package main

import (
	"encoding/csv"
	"log"
	"os"
	"strconv"

	"github.com/klauspost/compress/gzip"
	"github.com/linkedin/goavro/v2"
	parquet "github.com/parquet-go/parquet-go"
)

type Employee struct {
	Name   string `parquet:"name"`
	Dept   string `parquet:"dept"`
	City   string `parquet:"city"`
	Salary int64  `parquet:"salary"`
}

const avroSchema = `{
  "type": "record",
  "name": "Employee",
  "fields": [
    {"name": "name", "type": "string"},
    {"name": "dept", "type": "string"},
    {"name": "city", "type": "string"},
    {"name": "salary", "type": "long"}
  ]
}`

var employees = []Employee{
	{"Alice", "eng", "NY", 120},
	{"Bob", "eng", "LA", 95},
	{"Charlie", "sales", "NY", 70},
	{"Diana", "eng", "SF", 130},
	{"Eve", "sales", "LA", 65},
	{"Frank", "ops", "NY", 80},
}

func main() {
	writeParquet("testdata/employees.parquet")
	writeAvro("testdata/employees.avro")
	writeGzipCSV("testdata/staff.csv.gz")
}

func writeParquet(path string) {
	f, err := os.Create(path)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	w := parquet.NewGenericWriter[Employee](f)
	if _, err := w.Write(employees); err != nil {
		log.Fatal(err)
	}
	if err := w.Close(); err != nil {
		log.Fatal(err)
	}
}

func writeAvro(path string) {
	f, err := os.Create(path)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	w, err := goavro.NewOCFWriter(goavro.OCFConfig{W: f, Schema: avroSchema})
	if err != nil {
		log.Fatal(err)
	}
	records := make([]any, 0, len(employees))
	for _, e := range employees {
		records = append(records, map[string]any{
			"name":   e.Name,
			"dept":   e.Dept,
			"city":   e.City,
			"salary": e.Salary,
		})
	}
	if err := w.Append(records); err != nil {
		log.Fatal(err)
	}
}

func writeGzipCSV(path string) {
	f, err := os.Create(path)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	zw := gzip.NewWriter(f)
	cw := csv.NewWriter(zw)
	cw.Write([]string{"name", "dept", "city", "salary"})
	for _, e := range employees {
		cw.Write([]string{e.Name, e.Dept, e.City, strconv.FormatInt(e.Salary, 10)})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		log.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		log.Fatal(err)
	}
}
