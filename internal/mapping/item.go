package mapping

import (
	"encounterport/internal/assets"
	"encounterport/internal/source"
	"encounterport/internal/target"
)

const placeholderItem = "icons/svg/item-bag.svg"

func (m *Mapper) Item(it source.Item) *target.Item {
	img, _ := m.resolver.Resolve(it.Image.String(), assets.KindItemImage, true)
	if !assets.HasValidImageExtension(img) {
		img = placeholderItem
	}

	var usesMax, usesValue source.Scalar
	if it.Uses != nil {
		usesMax, usesValue = it.Uses.Max, it.Uses.Value
	}
	charges := safeInt(pickFirst(it.Charges, usesMax), 0)
	current := safeInt(pickFirst(usesValue, source.Num(float64(charges))), charges)

	return &target.Item{
		Name: it.Name.OrString("Item"),
		Type: "loot",
		Img:  m.url(img),
		System: target.ItemSystem{
			Description: target.TextValue{Value: pickFirst(it.Descr, it.Description).String()},
			Quantity:    safeInt(pickFirst(it.Quantity, it.Qty, it.Count), 1),
			Weight:      safeFloat(pickFirst(it.Weight, it.Mass), 0),
			Price: target.Price{
				Value:        safeFloat(pickFirst(it.Value, it.Price, it.Cost), 0),
				Denomination: "gp",
			},
			Uses: target.Uses{Value: current, Max: charges, Per: "charges"},
		},
		Flags: target.Flags{Importer: sourceRef(it.Ref())},
	}
}
