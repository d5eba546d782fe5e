package types_test

import (
	"encoding/json"
	"testing"

	"github.com/okian/platefinder/internal/domain/model"
	types "github.com/okian/platefinder/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRecommendationsResponse(t *testing.T) {
	Convey("Given a recommendations response", t, func() {
		resp := types.RecommendationsResponse{
			Recommendations: []model.Recommendation{{Name: "Verde", Style: "Italian", Vegetarian: true}},
		}

		Convey("When encoding it", func() {
			raw, err := json.Marshal(resp)
			So(err, ShouldBeNil)

			Convey("Then the list sits under restaurantRecommendations", func() {
				var doc map[string][]map[string]any
				So(json.Unmarshal(raw, &doc), ShouldBeNil)
				So(doc, ShouldContainKey, "restaurantRecommendations")
				So(doc["restaurantRecommendations"], ShouldHaveLength, 1)
				So(doc["restaurantRecommendations"][0]["name"], ShouldEqual, "Verde")
			})
		})
	})
}

func TestCreatedResponse(t *testing.T) {
	Convey("Given a created response", t, func() {
		raw, err := json.Marshal(types.CreatedResponse{Message: "Restaurant created successfully", ID: "abc"})
		So(err, ShouldBeNil)

		Convey("Then message and id are the only keys", func() {
			So(string(raw), ShouldEqual, `{"message":"Restaurant created successfully","id":"abc"}`)
		})
	})
}
