package utils

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"thermolab/internal/models"

	"github.com/xuri/excelize/v2"
)

const exportTimeLayout = "2006-01-02 15:04:05"

// CSVHeader - формат, который ожидает фронтенд при скачивании.
var CSVHeader = []string{"Timestamp", "Temperature (°C)", "Humidity (%)"}

// ReadingsCSV сериализует показания в CSV: строка заголовка плюс
// строка на каждое показание, в переданном порядке.
func ReadingsCSV(readings []models.Reading) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(CSVHeader); err != nil {
		return nil, err
	}

	for _, r := range readings {
		row := []string{
			r.Timestamp.Format(exportTimeLayout),
			strconv.FormatFloat(r.Temperature, 'f', -1, 64),
			strconv.FormatFloat(r.Humidity, 'f', -1, 64),
		}
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadingsExcel создает xlsx с листом показаний и сводкой по устройству.
func ReadingsExcel(deviceID string, readings []models.Reading) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Readings"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}

	for i, header := range CSVHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	for rowIdx, r := range readings {
		rowNum := rowIdx + 2 // заголовок в первой строке

		f.SetCellValue(sheet, fmt.Sprintf("A%d", rowNum), r.Timestamp.Format(exportTimeLayout))
		f.SetCellValue(sheet, fmt.Sprintf("B%d", rowNum), r.Temperature)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", rowNum), r.Humidity)
	}

	for i := 1; i <= len(CSVHeader); i++ {
		colName, _ := excelize.ColumnNumberToName(i)
		f.SetColWidth(sheet, colName, colName, 22)
	}

	writeSummarySheet(f, deviceID, readings)

	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSummarySheet(f *excelize.File, deviceID string, readings []models.Reading) {
	if len(readings) == 0 {
		return
	}

	const sheet = "Summary"
	f.NewSheet(sheet)

	minTemp, maxTemp, sumTemp := readings[0].Temperature, readings[0].Temperature, 0.0
	minHum, maxHum, sumHum := readings[0].Humidity, readings[0].Humidity, 0.0
	for _, r := range readings {
		if r.Temperature < minTemp {
			minTemp = r.Temperature
		}
		if r.Temperature > maxTemp {
			maxTemp = r.Temperature
		}
		sumTemp += r.Temperature

		if r.Humidity < minHum {
			minHum = r.Humidity
		}
		if r.Humidity > maxHum {
			maxHum = r.Humidity
		}
		sumHum += r.Humidity
	}
	n := float64(len(readings))

	rows := [][2]interface{}{
		{"Device", deviceID},
		{"Records", len(readings)},
		{"Time Range", fmt.Sprintf("%s to %s",
			readings[0].Timestamp.Format(exportTimeLayout),
			readings[len(readings)-1].Timestamp.Format(exportTimeLayout))},
		{"Temperature Min (°C)", minTemp},
		{"Temperature Max (°C)", maxTemp},
		{"Temperature Avg (°C)", sumTemp / n},
		{"Humidity Min (%)", minHum},
		{"Humidity Max (%)", maxHum},
		{"Humidity Avg (%)", sumHum / n},
	}

	for i, row := range rows {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", i+1), row[0])
		f.SetCellValue(sheet, fmt.Sprintf("B%d", i+1), row[1])
	}
	f.SetColWidth(sheet, "A", "A", 24)
	f.SetColWidth(sheet, "B", "B", 40)
}
