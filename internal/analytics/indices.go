package analytics

import (
	"math"

	"agrobot-intelligence/internal/models"
)

const (
	optimalSoilPH       = 6.8
	optimalSoilMoisture = 60.0
	salinityOnset       = 200.0
	heatStressOnset     = 30.0
)

// ComputeIndices derives fertility, soil health and water stress indicators.
// Missing fields fall back to neutral values.
func ComputeIndices(current *models.SensorReading) *models.AgriculturalIndices {
	if current.IsEmpty() {
		return nil
	}

	indices := &models.AgriculturalIndices{}

	n := current.ValueOr(models.FieldNitrogen, 0)
	p := current.ValueOr(models.FieldPhosphorus, 0)
	k := current.ValueOr(models.FieldPotassium, 0)
	if n != 0 && p != 0 && k != 0 {
		fertility := (math.Min(n/50*100, 100) + math.Min(p/40*100, 100) + math.Min(k/50*100, 100)) / 3
		indices.FertilityIndex = &fertility
	}

	ph := current.ValueOr(models.FieldPH, 7.0)
	phScore := clamp(100-math.Abs(ph-optimalSoilPH)*20, 0, 100)

	ec := current.ValueOr(models.FieldConductivity, 100)
	ecScore := 100.0
	if ec >= salinityOnset {
		ecScore = math.Max(0, 100-(ec-salinityOnset)/10)
	}
	indices.SoilHealthScore = (phScore + ecScore) / 2

	humidity := current.ValueOr(models.FieldHumidity, 50)
	temp := current.ValueOr(models.FieldTemperature, 25)
	tempFactor := math.Max(0, (temp-heatStressOnset)/10)
	humidityFactor := math.Abs(humidity-optimalSoilMoisture) / 30
	indices.WaterStressIndex = math.Min(100, (tempFactor+humidityFactor)*50)

	return indices
}
