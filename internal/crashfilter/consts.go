package crashfilter

const (
	CDefaultSourceDir          = "csv"
	CDefaultOutputDir          = "analyzed"
	CDefaultMunicipality       = "CAMBRIDGE"
	CDefaultRoadway            = "Memorial Drive"
	CDefaultMunicipalityColumn = "CITY_TOWN_NAME"
	CDefaultRoadwayColumn      = "RDWY"
	CDefaultFanOutDir          = "municipalities"

	cMergedArtifactName   = "merged_massDOT_impact_data"
	cFilteredArtifactName = "filtered_massDOT_data"
	cArtifactExt          = ".csv"
	cCatalogName          = "artifacts"
)

var (
	cSourcePatterns = []string{"*.csv", "*.csv.gz"}
)
