package booking

import "github.com/user/hotel-scraper/internal/entity"

const (
	// PageSize is the number of properties one search page returns.
	PageSize = 100
	// OperationName is the GraphQL operation the search endpoint serves.
	OperationName = "FullSearch"
	// HotelFilterID restricts results to properties of type hotel.
	HotelFilterID = "ht_id=204"
	// DestTypeCity marks a city destination in requests and breadcrumbs.
	DestTypeCity = "CITY"
)

// Query is the JSON body POSTed to the search endpoint.
type Query struct {
	OperationName string         `json:"operationName"`
	Variables     QueryVariables `json:"variables"`
	Query         string         `json:"query"`
}

type QueryVariables struct {
	Input              SearchInput `json:"input"`
	CarouselLowCodeExp bool        `json:"carouselLowCodeExp"`
}

type SearchInput struct {
	AcidCarouselContext        *string        `json:"acidCarouselContext"`
	ChildrenAges               []int          `json:"childrenAges"`
	Dates                      SearchDates    `json:"dates"`
	DoAvailabilityCheck        bool           `json:"doAvailabilityCheck"`
	EncodedAutocompleteMeta    *string        `json:"encodedAutocompleteMeta"`
	EnableCampaigns            bool           `json:"enableCampaigns"`
	Filters                    SearchFilters  `json:"filters"`
	Location                   SearchLocation `json:"location"`
	NbAdults                   int            `json:"nbAdults"`
	NbChildren                 int            `json:"nbChildren"`
	NbRooms                    int            `json:"nbRooms"`
	NeedsRoomsMatch            bool           `json:"needsRoomsMatch"`
	Pagination                 Pagination     `json:"pagination"`
	ReferrerBlock              ReferrerBlock  `json:"referrerBlock"`
	UseSearchParamsFromSession bool           `json:"useSearchParamsFromSession"`
}

type SearchDates struct {
	CheckIn  string `json:"checkin"`
	CheckOut string `json:"checkout"`
}

type SearchFilters struct {
	SelectedFilters string `json:"selectedFilters,omitempty"`
}

type SearchLocation struct {
	SearchString string `json:"searchString"`
	DestType     string `json:"destType"`
}

type Pagination struct {
	RowsPerPage int `json:"rowsPerPage"`
	Offset      int `json:"offset"`
}

type ReferrerBlock struct {
	BlockName string `json:"blockName"`
}

// BuildQuery constructs the search payload for one page of a request.
// Offsets advance in steps of PageSize; currency travels in the query string,
// not in the body.
func BuildQuery(req entity.ScrapeRequest, offset int) Query {
	input := SearchInput{
		ChildrenAges: make([]int, 0),
		Dates: SearchDates{
			CheckIn:  req.CheckIn,
			CheckOut: req.CheckOut,
		},
		EnableCampaigns: true,
		Location: SearchLocation{
			SearchString: req.City,
			DestType:     DestTypeCity,
		},
		NbAdults:   req.Adults,
		NbChildren: req.Children,
		NbRooms:    req.Rooms,
		Pagination: Pagination{
			RowsPerPage: PageSize,
			Offset:      offset,
		},
		ReferrerBlock: ReferrerBlock{BlockName: "searchbox"},
	}
	if req.HotelOnly {
		input.Filters.SelectedFilters = HotelFilterID
	}

	return Query{
		OperationName: OperationName,
		Variables: QueryVariables{
			Input: input,
		},
		Query: fullSearchQuery,
	}
}

// PageOffsets lists the offsets needed to cover total results.
func PageOffsets(total int) []int {
	if total <= 0 {
		return nil
	}
	pages := (total + PageSize - 1) / PageSize
	offsets := make([]int, pages)
	for i := range offsets {
		offsets[i] = i * PageSize
	}
	return offsets
}

const fullSearchQuery = `query FullSearch($input: SearchQueryInput!, $carouselLowCodeExp: Boolean!) {
  searchQueries {
    search(input: $input) {
      ... on SearchQueryOutput {
        breadcrumbs {
          ... on SearchResultsBreadcrumb {
            name
            destType
            destId
            __typename
          }
          __typename
        }
        flexibleDatesConfig {
          dateRangeCalendar {
            checkin
            checkout
            __typename
          }
          __typename
        }
        pagination {
          nbResultsPerPage
          nbResultsTotal
          __typename
        }
        searchMeta {
          nbAdults
          nbChildren
          nbRooms
          childrenAges
          __typename
        }
        appliedFilterOptions {
          urlId
          __typename
        }
        results {
          basicPropertyData {
            id
            reviewScore: reviews {
              score: totalScore
              reviewCount: reviewsCount
              __typename
            }
            __typename
          }
          blocks {
            ... on Block {
              finalPrice {
                amount
                currency
                __typename
              }
              __typename
            }
            __typename
          }
          displayName {
            text
            __typename
          }
          location {
            displayLocation
            __typename
          }
          __typename
        }
        __typename
      }
      __typename
    }
    __typename
  }
}
`
