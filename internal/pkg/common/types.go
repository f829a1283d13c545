package common

import "strings"

// CountryInfo describes a supported country
type CountryInfo struct {
	Code      string `json:"code"`
	NameEn    string `json:"name_en"`
	NameAr    string `json:"name_ar"`
	FlagEmoji string `json:"flag_emoji"`
	DishCount int    `json:"dish_count"`
}

// SupportedCountries is the fixed set of countries the dish corpus covers
var SupportedCountries = []CountryInfo{
	{Code: "lebanon", NameEn: "Lebanon", NameAr: "لبنان", FlagEmoji: "🇱🇧"},
	{Code: "syria", NameEn: "Syria", NameAr: "سوريا", FlagEmoji: "🇸🇾"},
	{Code: "iraq", NameEn: "Iraq", NameAr: "العراق", FlagEmoji: "🇮🇶"},
	{Code: "saudi", NameEn: "Saudi Arabia", NameAr: "السعودية", FlagEmoji: "🇸🇦"},
	{Code: "egypt", NameEn: "Egypt", NameAr: "مصر", FlagEmoji: "🇪🇬"},
	{Code: "jordan", NameEn: "Jordan", NameAr: "الأردن", FlagEmoji: "🇯🇴"},
	{Code: "palestine", NameEn: "Palestine", NameAr: "فلسطين", FlagEmoji: "🇵🇸"},
	{Code: "morocco", NameEn: "Morocco", NameAr: "المغرب", FlagEmoji: "🇲🇦"},
	{Code: "tunisia", NameEn: "Tunisia", NameAr: "تونس", FlagEmoji: "🇹🇳"},
	{Code: "algeria", NameEn: "Algeria", NameAr: "الجزائر", FlagEmoji: "🇩🇿"},
}

// IsSupportedCountry reports whether code names a known country.
// The empty string is accepted: it means "no country filter".
func IsSupportedCountry(code string) bool {
	if code == "" {
		return true
	}
	code = strings.ToLower(strings.TrimSpace(code))
	for _, c := range SupportedCountries {
		if c.Code == code {
			return true
		}
	}
	return false
}
