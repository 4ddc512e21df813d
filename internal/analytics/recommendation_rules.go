package analytics

import (
	"fmt"
	"math"

	"agrobot-intelligence/internal/models"
)

func rec(priority models.RecommendationPriority, action, reason, timing string) models.Recommendation {
	return models.Recommendation{
		Priority: priority,
		Action:   action,
		Reason:   reason,
		Timing:   timing,
	}
}

func risk(priority models.RecommendationPriority, kind, description, mitigation string) models.Recommendation {
	return models.Recommendation{
		Priority:   priority,
		Action:     kind,
		Reason:     description,
		Mitigation: mitigation,
	}
}

// ============================================================================
// IRRIGATION
// ============================================================================

func irrigationRules(th IrrigationThresholds) []RuleChain[irrigationInput, models.Recommendation] {
	moisture := RuleChain[irrigationInput, models.Recommendation]{
		{
			Name: "critical-dry-rain-expected",
			When: func(in irrigationInput) bool {
				return in.SoilHumidity < th.CriticalMoisture && in.UpcomingRain > th.HeavyRainExpected
			},
			Then: func(in irrigationInput) models.Recommendation {
				return rec(models.PriorityMedium, "Light irrigation before expected rain",
					fmt.Sprintf("Soil critically dry (%.1f%%) but heavy rain expected (%.1fmm)", in.SoilHumidity, in.UpcomingRain),
					"Light watering in 2-3 hours, then monitor rainfall")
			},
		},
		{
			Name: "critical-dry",
			When: func(in irrigationInput) bool { return in.SoilHumidity < th.CriticalMoisture },
			Then: func(in irrigationInput) models.Recommendation {
				priority := models.PriorityMedium
				if in.SoilTemp > th.UrgentSoilTemp || in.UpcomingRain == 0 {
					priority = models.PriorityHigh
				}
				return rec(priority, "Immediate deep irrigation required",
					fmt.Sprintf("Critical soil moisture (%.1f%%), temp %.1f°C, minimal rain expected", in.SoilHumidity, in.SoilTemp),
					"Within 1-2 hours - early morning or evening preferred")
			},
		},
		{
			Name: "low-rain-expected",
			When: func(in irrigationInput) bool { return in.SoilHumidity < th.LowMoisture && in.UpcomingRain > th.RainExpected },
			Then: func(in irrigationInput) models.Recommendation {
				return rec(models.PriorityLow, "Monitor soil conditions",
					fmt.Sprintf("Soil moisture adequate (%.1f%%) with rain expected (%.1fmm)", in.SoilHumidity, in.UpcomingRain),
					"Check again after rainfall")
			},
		},
		{
			Name: "low",
			When: func(in irrigationInput) bool { return in.SoilHumidity < th.LowMoisture },
			Then: func(in irrigationInput) models.Recommendation {
				return rec(models.PriorityMedium, "Moderate irrigation recommended",
					fmt.Sprintf("Soil moisture below optimal (%.1f%%), no significant rain forecast", in.SoilHumidity),
					"Next 4-6 hours, preferably early morning")
			},
		},
		{
			Name: "waterlogged",
			When: func(in irrigationInput) bool { return in.SoilHumidity > th.WaterloggedMoisture },
			Then: func(in irrigationInput) models.Recommendation {
				return rec(models.PriorityLow, "Reduce or skip irrigation",
					fmt.Sprintf("Soil moisture high (%.1f%%) - risk of waterlogging", in.SoilHumidity),
					"Monitor drainage, avoid irrigation for 24-48 hours")
			},
		},
	}

	heat := RuleChain[irrigationInput, models.Recommendation]{
		{
			Name: "heat-stress",
			When: func(in irrigationInput) bool { return in.SoilTemp > th.HeatStressTemp && in.SoilHumidity < th.HeatStressMoisture },
			Then: func(in irrigationInput) models.Recommendation {
				return rec(models.PriorityHigh, "Heat stress mitigation irrigation",
					fmt.Sprintf("High temperature (%.1f°C) with moderate soil moisture", in.SoilTemp),
					"Immediate light irrigation, then evening watering")
			},
		},
	}

	return []RuleChain[irrigationInput, models.Recommendation]{moisture, heat}
}

// ============================================================================
// FERTILIZATION
// ============================================================================

func fertilizationRules(th FertilizationThresholds) []RuleChain[fertilizationInput, models.Recommendation] {
	nitrogen := RuleChain[fertilizationInput, models.Recommendation]{
		{
			Name: "nitrogen-critical",
			When: func(in fertilizationInput) bool { return in.Nitrogen < th.Nitrogen.Critical },
			Then: func(in fertilizationInput) models.Recommendation {
				return rec(models.PriorityHigh, "Emergency nitrogen application",
					fmt.Sprintf("Severe nitrogen deficiency detected (%.1f ppm) - crops at risk", in.Nitrogen),
					"Apply high-nitrogen fertilizer within 24 hours")
			},
		},
		{
			Name: "nitrogen-low",
			When: func(in fertilizationInput) bool { return in.Nitrogen < th.Nitrogen.Low },
			Then: func(in fertilizationInput) models.Recommendation {
				return rec(models.PriorityMedium, "Nitrogen supplementation needed",
					fmt.Sprintf("Low nitrogen levels (%.1f ppm) below optimal range (20-50 ppm)", in.Nitrogen),
					"Apply nitrogen-rich fertilizer within 2-3 days")
			},
		},
		{
			Name: "nitrogen-excess",
			When: func(in fertilizationInput) bool { return in.Nitrogen > th.Nitrogen.Excess },
			Then: func(in fertilizationInput) models.Recommendation {
				return rec(models.PriorityMedium, "Reduce nitrogen inputs",
					fmt.Sprintf("Nitrogen levels excessive (%.1f ppm) - environmental risk", in.Nitrogen),
					"Skip next nitrogen application, monitor growth")
			},
		},
	}

	phosphorus := RuleChain[fertilizationInput, models.Recommendation]{
		{
			Name: "phosphorus-critical",
			When: func(in fertilizationInput) bool { return in.Phosphorus < th.Phosphorus.Critical },
			Then: func(in fertilizationInput) models.Recommendation {
				return rec(models.PriorityHigh, "Phosphorus fertilization critical",
					fmt.Sprintf("Extremely low phosphorus (%.1f ppm) affects root development", in.Phosphorus),
					"Apply phosphorus fertilizer immediately")
			},
		},
		{
			Name: "phosphorus-low",
			When: func(in fertilizationInput) bool { return in.Phosphorus < th.Phosphorus.Low },
			Then: func(in fertilizationInput) models.Recommendation {
				return rec(models.PriorityMedium, "Increase phosphorus application",
					fmt.Sprintf("Phosphorus below optimal (%.1f ppm)", in.Phosphorus),
					"Next fertilization cycle")
			},
		},
		{
			Name: "phosphorus-excess",
			When: func(in fertilizationInput) bool { return in.Phosphorus > th.Phosphorus.Excess },
			Then: func(in fertilizationInput) models.Recommendation {
				return rec(models.PriorityLow, "Reduce phosphorus applications",
					fmt.Sprintf("High phosphorus levels (%.1f ppm) - runoff risk", in.Phosphorus),
					"Skip phosphorus in next 2 applications")
			},
		},
	}

	potassium := RuleChain[fertilizationInput, models.Recommendation]{
		{
			Name: "potassium-critical",
			When: func(in fertilizationInput) bool { return in.Potassium < th.Potassium.Critical },
			Then: func(in fertilizationInput) models.Recommendation {
				return rec(models.PriorityHigh, "Potassium supplementation urgent",
					fmt.Sprintf("Critical potassium deficiency (%.1f ppm) affects disease resistance", in.Potassium),
					"Apply potassium fertilizer within 48 hours")
			},
		},
		{
			Name: "potassium-low",
			When: func(in fertilizationInput) bool { return in.Potassium < th.Potassium.Low },
			Then: func(in fertilizationInput) models.Recommendation {
				return rec(models.PriorityMedium, "Increase potassium levels",
					fmt.Sprintf("Low potassium (%.1f ppm) may affect fruit quality", in.Potassium),
					"Next regular fertilization")
			},
		},
	}

	soilPH := RuleChain[fertilizationInput, models.Recommendation]{
		{
			Name: "acidic",
			When: func(in fertilizationInput) bool { return in.PH < th.AcidicPH },
			Then: func(in fertilizationInput) models.Recommendation {
				return rec(models.PriorityHigh, "Immediate soil pH correction with lime",
					fmt.Sprintf("Acidic soil (pH %.2f) severely limits nutrient uptake", in.PH),
					"Apply agricultural lime before any other fertilizers")
			},
		},
		{
			Name: "alkaline",
			When: func(in fertilizationInput) bool { return in.PH > th.AlkalinePH },
			Then: func(in fertilizationInput) models.Recommendation {
				return rec(models.PriorityHigh, "Lower soil pH with sulfur amendments",
					fmt.Sprintf("Alkaline soil (pH %.2f) reduces iron and phosphorus availability", in.PH),
					"Apply elemental sulfur, monitor pH weekly")
			},
		},
		{
			Name: "slightly-acidic",
			When: func(in fertilizationInput) bool { return between(in.PH, th.AcidicPH, th.SlightlyAcidicPH) },
			Then: func(in fertilizationInput) models.Recommendation {
				return rec(models.PriorityMedium, "Light lime application recommended",
					fmt.Sprintf("Slightly acidic pH (%.2f) - optimal range is 6.0-7.5", in.PH),
					"Light lime application in next month")
			},
		},
	}

	salinity := RuleChain[fertilizationInput, models.Recommendation]{
		{
			Name: "salinity-gate",
			When: func(in fertilizationInput) bool { return in.Conductivity > th.SalinityGate },
			Then: func(in fertilizationInput) models.Recommendation {
				return rec(models.PriorityHigh, "Address soil salinity before fertilizing",
					fmt.Sprintf("High soil salinity (%.0f µS/cm) reduces fertilizer effectiveness", in.Conductivity),
					"Increase leaching irrigation before next fertilizer application")
			},
		},
	}

	return []RuleChain[fertilizationInput, models.Recommendation]{nitrogen, phosphorus, potassium, soilPH, salinity}
}

// ============================================================================
// TIMING
// ============================================================================

func timingRules(th TimingThresholds) []RuleChain[timingInput, models.Recommendation] {
	spraying := RuleChain[timingInput, models.Recommendation]{
		{
			Name: "wind-cancel",
			When: func(in timingInput) bool { return in.WindKmh > th.WindCancel },
			Then: func(in timingInput) models.Recommendation {
				return rec(models.PriorityHigh, "Cancel all spraying operations",
					fmt.Sprintf("Dangerous wind speed (%.1f km/h) - high drift risk", in.WindKmh),
					"Wait for wind speeds below 15 km/h")
			},
		},
		{
			Name: "wind-postpone",
			When: func(in timingInput) bool { return in.WindKmh > th.WindPostpone },
			Then: func(in timingInput) models.Recommendation {
				return rec(models.PriorityMedium, "Postpone spraying operations",
					fmt.Sprintf("High wind speed (%.1f km/h) may cause drift", in.WindKmh),
					"Wait for calmer conditions (<10 km/h)")
			},
		},
		{
			Name: "spray-window",
			When: func(in timingInput) bool {
				return between(in.WindKmh, th.SprayWindMin, th.SprayWindMax) && in.AirTemp < th.SprayTempMax
			},
			Then: func(in timingInput) models.Recommendation {
				return rec(models.PriorityLow, "Excellent spraying conditions",
					fmt.Sprintf("Optimal wind (%.1f km/h) and temperature (%.1f°C)", in.WindKmh, in.AirTemp),
					"Current conditions ideal for pesticide/herbicide application")
			},
		},
	}

	temperature := RuleChain[timingInput, models.Recommendation]{
		{
			Name: "extreme-heat",
			When: func(in timingInput) bool { return in.AirTemp > th.ExtremeHeat },
			Then: func(in timingInput) models.Recommendation {
				return rec(models.PriorityHigh, "Avoid midday field operations",
					fmt.Sprintf("Extreme heat (%.1f°C) - equipment and crop stress", in.AirTemp),
					"Limit activities to early morning (5-8 AM) or evening (6-8 PM)")
			},
		},
		{
			Name: "cold",
			When: func(in timingInput) bool { return in.AirTemp < th.Cold },
			Then: func(in timingInput) models.Recommendation {
				return rec(models.PriorityMedium, "Delay outdoor activities",
					fmt.Sprintf("Low temperature (%.1f°C) may damage equipment and crops", in.AirTemp),
					"Wait for temperatures above 8°C")
			},
		},
	}

	planting := RuleChain[timingInput, models.Recommendation]{
		{
			Name: "planting-window",
			When: func(in timingInput) bool {
				return in.HasPlantingData && between(in.ForecastMean, th.PlantingTempMin, th.PlantingTempMax) && in.ForecastStd < th.StableStd
			},
			Then: func(in timingInput) models.Recommendation {
				return rec(models.PriorityLow, "Favorable planting window",
					fmt.Sprintf("Stable temperatures (avg %.1f°C, variation ±%.1f°C)", in.ForecastMean, in.ForecastStd),
					"Next 3-5 days optimal for planting operations")
			},
		},
		{
			Name: "unstable-weather",
			When: func(in timingInput) bool { return in.HasPlantingData && in.ForecastStd > th.UnstableStd },
			Then: func(in timingInput) models.Recommendation {
				return rec(models.PriorityMedium, "Wait for stable weather",
					fmt.Sprintf("High temperature variation (±%.1f°C) not ideal for planting", in.ForecastStd),
					"Delay planting until weather stabilizes")
			},
		},
	}

	return []RuleChain[timingInput, models.Recommendation]{spraying, temperature, planting}
}

// ============================================================================
// RISK ASSESSMENT
// ============================================================================

func riskRules(th RiskThresholds) []RuleChain[riskInput, models.Recommendation] {
	soilTemperature := RuleChain[riskInput, models.Recommendation]{
		{
			Name: "severe-heat",
			When: func(in riskInput) bool { return in.SoilTemp > th.SevereSoilHeat },
			Then: func(in riskInput) models.Recommendation {
				return risk(models.PriorityHigh, "Severe Heat Stress",
					fmt.Sprintf("Extreme soil temperature (%.1f°C) - immediate crop damage likely", in.SoilTemp),
					"Emergency irrigation, shade cloth installation, harvest early if possible")
			},
		},
		{
			Name: "heat",
			When: func(in riskInput) bool { return in.SoilTemp > th.SoilHeat },
			Then: func(in riskInput) models.Recommendation {
				return risk(models.PriorityMedium, "Heat Stress Warning",
					fmt.Sprintf("High soil temperature (%.1f°C) - monitor crop stress indicators", in.SoilTemp),
					"Increase irrigation frequency, provide midday shade, monitor plant wilting")
			},
		},
		{
			Name: "frost",
			When: func(in riskInput) bool { return in.SoilTemp < th.SoilFrost },
			Then: func(in riskInput) models.Recommendation {
				return risk(models.PriorityHigh, "Frost Risk",
					fmt.Sprintf("Low soil temperature (%.1f°C) - frost damage possible", in.SoilTemp),
					"Deploy frost protection measures, cover sensitive plants, monitor overnight")
			},
		},
	}

	fungal := RuleChain[riskInput, models.Recommendation]{
		{
			Name: "fungal",
			When: func(in riskInput) bool {
				return in.HasWeather && in.SoilHumidity > th.FungalSoilHumidity &&
					between(in.AirTemp, th.FungalTempMin, th.FungalTempMax) && in.AirHumidity > th.FungalAirHumidity
			},
			Then: func(in riskInput) models.Recommendation {
				score := fungalRiskScore(in, th)
				priority := models.PriorityMedium
				if score > th.FungalHighScore {
					priority = models.PriorityHigh
				}
				return risk(priority, "High Fungal Disease Risk",
					fmt.Sprintf("Optimal conditions for fungal growth (soil: %.1f%%, air: %.1f%%, temp: %.1f°C)",
						in.SoilHumidity, in.AirHumidity, in.AirTemp),
					"Apply preventive fungicide, improve air circulation, reduce leaf wetness duration")
			},
		},
	}

	bacterial := RuleChain[riskInput, models.Recommendation]{
		{
			Name: "bacterial",
			When: func(in riskInput) bool {
				return in.HasWeather && in.SoilHumidity > th.BacterialSoilHumidity && in.AirTemp > th.BacterialTemp
			},
			Then: func(in riskInput) models.Recommendation {
				return risk(models.PriorityMedium, "Bacterial Disease Risk",
					"High moisture and temperature favor bacterial pathogens",
					"Avoid overhead irrigation, improve drainage, apply copper-based bactericide if needed")
			},
		},
	}

	lockout := RuleChain[riskInput, models.Recommendation]{
		{
			Name: "nutrient-lockout",
			When: func(in riskInput) bool { return in.PH < th.Lockout.Low || in.PH > th.Lockout.High },
			Then: func(in riskInput) models.Recommendation {
				priority := models.PriorityMedium
				if in.PH < th.Lockout.CriticalLow || in.PH > th.Lockout.CriticalHigh {
					priority = models.PriorityHigh
				}
				return risk(priority, "Severe Nutrient Lockout",
					fmt.Sprintf("Extreme pH (%.2f) prevents nutrient absorption - crop failure risk", in.PH),
					"Emergency pH correction required, foliar feeding as temporary measure")
			},
		},
	}

	rainfall := RuleChain[riskInput, models.Recommendation]{
		{
			Name: "flood",
			When: func(in riskInput) bool { return in.HasForecast && in.TotalRain > th.FloodRain },
			Then: func(in riskInput) models.Recommendation {
				return risk(models.PriorityHigh, "Flood Risk",
					fmt.Sprintf("Excessive rainfall predicted (%.1fmm) - waterlogging likely", in.TotalRain),
					"Ensure drainage systems clear, harvest ready crops, protect equipment")
			},
		},
		{
			Name: "heavy-rain",
			When: func(in riskInput) bool { return in.HasForecast && in.TotalRain > th.HeavyRain },
			Then: func(in riskInput) models.Recommendation {
				return risk(models.PriorityMedium, "Heavy Rain Warning",
					fmt.Sprintf("Heavy rainfall expected (%.1fmm) - field access may be limited", in.TotalRain),
					"Complete urgent field work now, prepare drainage, delay fertilizer applications")
			},
		},
	}

	storm := RuleChain[riskInput, models.Recommendation]{
		{
			Name: "storm",
			When: func(in riskInput) bool { return in.HasForecast && in.MaxWindKmh > th.StormWind },
			Then: func(in riskInput) models.Recommendation {
				return risk(models.PriorityHigh, "Storm Damage Risk",
					fmt.Sprintf("High winds predicted (%.1f km/h) - crop and equipment damage possible", in.MaxWindKmh),
					"Secure loose equipment, provide crop support, avoid tall machinery operations")
			},
		},
	}

	freeze := RuleChain[riskInput, models.Recommendation]{
		{
			Name: "freeze",
			When: func(in riskInput) bool { return in.HasForecast && in.MinTemp < th.FreezeTemp },
			Then: func(in riskInput) models.Recommendation {
				return risk(models.PriorityHigh, "Freeze Warning",
					fmt.Sprintf("Freezing temperatures expected (%.1f°C) - crop damage likely", in.MinTemp),
					"Deploy frost protection, harvest sensitive crops, drain irrigation lines")
			},
		},
	}

	return []RuleChain[riskInput, models.Recommendation]{
		soilTemperature, fungal, bacterial, lockout, rainfall, storm, freeze,
	}
}

// fungalRiskScore averages how far each driver sits past its onset.
func fungalRiskScore(in riskInput, th RiskThresholds) float64 {
	return ((in.SoilHumidity - th.FungalSoilHumidity) + (in.AirHumidity - th.FungalAirHumidity) + math.Abs(in.AirTemp-th.FungalOptimumTemp)) / 3
}

// ============================================================================
// GENERAL
// ============================================================================

func generalRules(th GeneralThresholds) []RuleChain[generalInput, models.Recommendation] {
	salinity := RuleChain[generalInput, models.Recommendation]{
		{
			Name: "salinity-critical",
			When: func(in generalInput) bool { return in.Conductivity > th.SalinityCritical },
			Then: func(in generalInput) models.Recommendation {
				return rec(models.PriorityHigh, "Critical salinity management needed",
					fmt.Sprintf("Very high soil salinity (%.0f µS/cm) - crop damage imminent", in.Conductivity),
					"Begin heavy leaching irrigation immediately")
			},
		},
		{
			Name: "salinity-elevated",
			When: func(in generalInput) bool { return in.Conductivity > th.SalinityElevated },
			Then: func(in generalInput) models.Recommendation {
				return rec(models.PriorityMedium, "Monitor and reduce soil salinity",
					fmt.Sprintf("Elevated soil salinity (%.0f µS/cm) may affect sensitive crops", in.Conductivity),
					"Increase leaching irrigation over next week")
			},
		},
	}

	calibration := RuleChain[generalInput, models.Recommendation]{
		{
			Name: "ec-tds-mismatch",
			When: func(in generalInput) bool { return math.Abs(in.Conductivity*th.TDSPerEC-in.TDS) > th.TDSTolerance },
			Then: func(in generalInput) models.Recommendation {
				return rec(models.PriorityLow, "Calibrate sensors",
					fmt.Sprintf("Conductivity (%.0f) and TDS (%.0f) readings inconsistent", in.Conductivity, in.TDS),
					"Check sensor calibration at next maintenance")
			},
		},
	}

	sensorHealth := RuleChain[generalInput, models.Recommendation]{
		{
			Name: "data-quality",
			When: func(in generalInput) bool {
				return in.Freshness == models.FreshnessPoor || in.Freshness == models.FreshnessUnknown || in.Completeness < th.MinCompleteness
			},
			Then: func(in generalInput) models.Recommendation {
				return rec(models.PriorityMedium, "Check sensor system health",
					fmt.Sprintf("Data quality concerns - freshness: %s, completeness: %.0f%%", in.Freshness, in.Completeness),
					"Inspect sensors and connectivity within 24 hours")
			},
		},
	}

	seasonal := RuleChain[generalInput, models.Recommendation]{
		{
			Name: "winter",
			When: func(in generalInput) bool { return in.Month == 12 || in.Month == 1 || in.Month == 2 },
			Then: func(generalInput) models.Recommendation {
				return rec(models.PriorityLow, "Winter crop protection measures",
					"Winter season - consider cold-hardy varieties and protection",
					"Review cold protection strategies")
			},
		},
		{
			Name: "summer",
			When: func(in generalInput) bool { return in.Month >= 6 && in.Month <= 8 },
			Then: func(generalInput) models.Recommendation {
				return rec(models.PriorityLow, "Summer heat management",
					"Summer season - implement heat stress mitigation strategies",
					"Prepare shade structures and cooling systems")
			},
		},
	}

	return []RuleChain[generalInput, models.Recommendation]{salinity, calibration, sensorHealth, seasonal}
}
