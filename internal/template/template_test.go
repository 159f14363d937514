package template

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func carouselDefinition() Definition {
	return Definition{
		Name:     "spring_collection",
		Language: "en_US",
		Category: CategoryMarketing,
		Status:   StatusApproved,
		Components: []Component{
			{Type: ComponentBody, Text: "Hi {{1}}, see our picks for {{2}}"},
			{
				Type: ComponentCarousel,
				Cards: []Card{
					{Components: []Component{
						{Type: ComponentHeader, Format: "IMAGE"},
						{Type: ComponentBody, Text: "Card one {{1}}"},
					}},
					{Components: []Component{
						{Type: ComponentHeader, Format: "IMAGE"},
						{Type: ComponentBody, Text: "Card two {{1}}"},
					}},
				},
			},
		},
	}
}

func TestExtract_OrdersByIndex(t *testing.T) {
	def := Definition{Components: []Component{{Type: ComponentBody, Text: "Hi {{2}}, your code {{1}} expires soon"}}}

	slots := Extract(def)

	require.Len(t, slots.Body, 2)
	assert.Equal(t, 1, slots.Body[0].Index)
	assert.Equal(t, "{{1}}", slots.Body[0].Placeholder)
	assert.Equal(t, 2, slots.Body[1].Index)
	assert.Empty(t, slots.Cards)
}

func TestExtract_DeduplicatesAndKeepsGaps(t *testing.T) {
	def := Definition{Components: []Component{
		{Type: ComponentHeader, Text: "Order {{3}}"},
		{Type: ComponentBody, Text: "{{3}} and {{5}} and {{3}} again"},
		{Type: ComponentFooter, Text: "no markers, {{x}} or {{ 4 }}"},
	}}

	slots := Extract(def)

	assert.Equal(t, []Slot{
		{Index: 3, Placeholder: "{{3}}"},
		{Index: 5, Placeholder: "{{5}}"},
	}, slots.Body)
}

func TestBind_SplitsSharedScopeByComponent(t *testing.T) {
	def := Definition{Components: []Component{
		{Type: ComponentHeader, Format: "TEXT", Text: "Order {{3}}"},
		{Type: ComponentBody, Text: "{{3}} and {{5}} and {{3}} again"},
		{Type: ComponentFooter, Text: "Thanks"},
	}}

	b, err := Bind(def, Extract(def).Set(3, "A-1").Set(5, "Friday"))

	require.NoError(t, err)
	assert.Equal(t, []string{"A-1", "Friday"}, b.Body, "validation keeps the merged scope")
	assert.Equal(t, Params{Header: []string{"A-1"}, Body: []string{"A-1", "Friday"}}, b.Params)
}

func TestExtract_NoPlaceholders(t *testing.T) {
	slots := Extract(Definition{Components: []Component{{Type: ComponentBody, Text: "Thanks!"}}})
	assert.Empty(t, slots.Body)
	assert.Equal(t, 0, slots.Count())

	values, err := Validate(slots)
	require.NoError(t, err)
	assert.Empty(t, values.Body)
}

func TestExtract_CarouselCardsAreIsolated(t *testing.T) {
	slots := Extract(carouselDefinition())

	require.Len(t, slots.Cards, 2)
	require.Len(t, slots.Cards[0], 1)
	require.Len(t, slots.Cards[1], 1)
	assert.Len(t, slots.Body, 2)

	bound := slots.SetCard(0, 1, "Tulips")
	assert.Equal(t, "Tulips", bound.Cards[0][0].Value)
	assert.Empty(t, bound.Cards[1][0].Value)
	assert.Empty(t, bound.Body[0].Value)
	assert.Empty(t, slots.Cards[0][0].Value, "original slots untouched")
}

func TestExtractFor_PrefillsLowestSlot(t *testing.T) {
	def := Definition{Components: []Component{{Type: ComponentBody, Text: "{{4}} then {{2}}"}}}

	slots := ExtractFor(def, "Amina")
	assert.Equal(t, 2, slots.Body[0].Index)
	assert.Equal(t, "Amina", slots.Body[0].Value)
	assert.Empty(t, slots.Body[1].Value)

	overridden := slots.Set(2, "Dr. Amina")
	assert.Equal(t, "Dr. Amina", overridden.Body[0].Value)

	noName := ExtractFor(def, "")
	assert.Empty(t, noName.Body[0].Value)

	none := ExtractFor(Definition{}, "Amina")
	assert.Empty(t, none.Body)
}

func TestValidate_ReportsBlankSlots(t *testing.T) {
	slots := Slots{Body: []Slot{
		{Index: 1, Placeholder: "{{1}}", Value: "Ann"},
		{Index: 2, Placeholder: "{{2}}", Value: "   "},
		{Index: 3, Placeholder: "{{3}}", Value: "Friday"},
	}}

	_, err := Validate(slots)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingSlots))
	var missing *MissingSlotsError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, 1, missing.Count())
	assert.Equal(t, []SlotRef{{Card: BodyScope, Index: 2}}, missing.Missing)
	assert.Equal(t, "1 field incomplete", err.Error())
}

func TestValidate_CountsCardScopes(t *testing.T) {
	slots := Extract(carouselDefinition()).Set(1, "Ann").Set(2, "spring").SetCard(1, 1, "Roses")

	_, err := Validate(slots)

	var missing *MissingSlotsError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []SlotRef{{Card: 0, Index: 1}}, missing.Missing)
}

func TestValidate_OrderedValues(t *testing.T) {
	def := Definition{Components: []Component{{Type: ComponentBody, Text: "Hi {{2}}, your code {{1}} expires soon"}}}
	slots := Extract(def).Apply(map[int]string{1: "9921", 2: "Sam"}, nil)

	values, err := Validate(slots)

	require.NoError(t, err)
	assert.Equal(t, []string{"9921", "Sam"}, values.Body)
	assert.Empty(t, values.Cards)
}

func TestBind_Carousel(t *testing.T) {
	def := carouselDefinition()
	slots := Extract(def).Apply(
		map[int]string{1: "Ann", 2: "spring"},
		[]map[int]string{{1: "Tulips"}, {1: "Roses"}},
	)

	b, err := Bind(def, slots)

	require.NoError(t, err)
	assert.Equal(t, "spring_collection", b.Name)
	assert.Equal(t, "en_US", b.Language)
	assert.Equal(t, []string{"Ann", "spring"}, b.Body)
	assert.Equal(t, [][]string{{"Tulips"}, {"Roses"}}, b.Cards)
	assert.Equal(t, "Hi Ann, see our picks for spring", b.Preview)
	assert.Equal(t, []string{"Card one Tulips", "Card two Roses"}, b.CardPreviews)
}

func TestBind_FailsWithoutValues(t *testing.T) {
	_, err := Bind(carouselDefinition(), Extract(carouselDefinition()))

	var missing *MissingSlotsError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, 4, missing.Count())
	assert.Equal(t, "4 fields incomplete", err.Error())
}

func TestRenderPreview(t *testing.T) {
	slots := []Slot{
		{Index: 1, Placeholder: "{{1}}", Value: "Sam"},
		{Index: 2, Placeholder: "{{2}}", Value: " "},
	}
	body := "Hi {{1}}, code {{2}}, ref {{3}}, again {{1}}"

	first := RenderPreview(body, slots)
	second := RenderPreview(body, slots)

	assert.Equal(t, "Hi Sam, code [Variable 2], ref {{3}}, again Sam", first)
	assert.Equal(t, first, second)
	assert.Equal(t, " ", slots[1].Value)
	assert.Equal(t, "Sam", slots[0].Value)
}

func TestRenderPreview_ValueContainingMarkerIsLiteral(t *testing.T) {
	slots := []Slot{{Index: 1, Value: "{{2}}"}, {Index: 2, Value: "x"}}
	assert.Equal(t, "{{2}} x", RenderPreview("{{1}} {{2}}", slots))
}

func TestParse(t *testing.T) {
	components := `[
		{"type":"body","text":"Hello {{1}}"},
		{"type":"CAROUSEL","cards":[{"components":[{"type":"body","text":"Card {{1}}"}]}]}
	]`

	def, err := Parse("promo", "en", "marketing", "APPROVED", components)

	require.NoError(t, err)
	assert.Equal(t, CategoryMarketing, def.Category)
	assert.True(t, def.IsApproved())
	body, ok := def.Body()
	require.True(t, ok)
	assert.Equal(t, "Hello {{1}}", body.Text)
	carousel, ok := def.Carousel()
	require.True(t, ok)
	assert.Equal(t, ComponentBody, carousel.Cards[0].Components[0].Type)
}

func TestParse_RejectsDuplicateBody(t *testing.T) {
	_, err := Parse("bad", "en", "UTILITY", "APPROVED", `[{"type":"BODY","text":"a"},{"type":"BODY","text":"b"}]`)
	assert.ErrorIs(t, err, ErrDuplicateBody)

	_, err = Parse("bad", "en", "UTILITY", "APPROVED", `not json`)
	assert.Error(t, err)
}
