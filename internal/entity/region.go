package entity

// Region groups the localities a country-wide sweep visits.
type Region struct {
	Name       string
	Localities []string
}

// JapanRegions maps each region to the capital city of its prefectures, in sweep
// order. Localities are searched as cities, so prefectures are represented by
// their capitals (Hokkaido by Sapporo, Kanagawa by Yokohama).
var JapanRegions = []Region{
	{Name: "Hokkaido", Localities: []string{"Sapporo"}},
	{Name: "Tohoku", Localities: []string{"Aomori", "Morioka", "Sendai", "Akita", "Yamagata", "Fukushima"}},
	{Name: "Kanto", Localities: []string{"Mito", "Utsunomiya", "Maebashi", "Saitama", "Chiba", "Tokyo", "Yokohama"}},
	{Name: "Chubu", Localities: []string{"Niigata", "Toyama", "Kanazawa", "Fukui", "Kofu", "Nagano", "Gifu", "Shizuoka", "Nagoya"}},
	{Name: "Kansai", Localities: []string{"Tsu", "Otsu", "Kyoto", "Osaka", "Kobe", "Nara", "Wakayama"}},
	{Name: "Chugoku", Localities: []string{"Tottori", "Matsue", "Okayama", "Hiroshima", "Yamaguchi"}},
	{Name: "Shikoku", Localities: []string{"Tokushima", "Takamatsu", "Matsuyama", "Kochi"}},
	{Name: "Kyushu", Localities: []string{"Fukuoka", "Saga", "Nagasaki", "Kumamoto", "Oita", "Miyazaki", "Kagoshima", "Naha"}},
}
