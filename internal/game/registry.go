package game

// Built-in card set. Effect kinds are attached here, at definition time, so
// resolution never has to match on card names.

func energy(name string, value int, tags ...Seal) Card {
	return Card{
		Name:     name,
		Kind:     KindResource,
		Category: CategoryEnergy,
		Value:    value,
		Subtypes: tags,
	}
}

func demon(name string, stars, cost int, element Seal, subtype Seal, subtypeMin int, text string) Card {
	return Card{
		Name:           name,
		Kind:           KindDemon,
		Stars:          stars,
		BaseCost:       cost,
		Element:        element,
		CostSubtype:    subtype,
		CostSubtypeMin: subtypeMin,
		EffectText:     text,
	}
}

// DefaultResourceSet is the supply deck: energy cards, playable magic and
// imprevisto cards that resolve on draw.
func DefaultResourceSet() []CardDef {
	return []CardDef{
		{Card: energy("Scintilla", 1, SealFuoco), Qty: 4},
		{Card: energy("Fiammata", 2, SealFuoco), Qty: 3},
		{Card: energy("Rogo", 3, SealFuoco), Qty: 2},
		{Card: energy("Goccia", 1, SealAcqua), Qty: 4},
		{Card: energy("Onda", 2, SealAcqua), Qty: 3},
		{Card: energy("Maremoto", 3, SealAcqua), Qty: 2},
		{Card: energy("Sasso", 1, SealTerra), Qty: 4},
		{Card: energy("Frana", 2, SealTerra), Qty: 3},
		{Card: energy("Terremoto", 3, SealTerra), Qty: 2},
		{Card: energy("Brezza", 1, SealAria), Qty: 4},
		{Card: energy("Raffica", 2, SealAria), Qty: 3},
		{Card: energy("Tempesta", 3, SealAria), Qty: 2},
		{Card: energy("Bagliore", 1, SealLuce), Qty: 4},
		{Card: energy("Raggio", 2, SealLuce), Qty: 3},
		{Card: energy("Folgore", 3, SealLuce), Qty: 2},

		{Card: Card{
			Name: "Spostastelle", Kind: KindResource, Category: CategoryMagic,
			Effect: EffectRotateBoss, Steps: []int{-2, -1, 1, 2},
		}, Qty: 5},
		{Card: Card{
			Name: "Stoppastella", Kind: KindResource, Category: CategoryMagic,
			Effect: EffectCancelRotation, SpecialCost: 1,
		}, Qty: 3},
		{Card: Card{
			Name: "Richiamo", Kind: KindResource, Category: CategoryMagic,
			Effect: EffectDrawResource, Amount: 2,
		}, Qty: 2},

		{Card: Card{Name: "Eclissi", Kind: KindImprevisto, Effect: EffectStarBonus, Amount: -1}, Qty: 2},
		{Card: Card{Name: "Stella Cadente", Kind: KindImprevisto, Effect: EffectStarBonus, Amount: 1}, Qty: 2},
		{Card: Card{Name: "Nebbia", Kind: KindImprevisto, Effect: EffectBlockSummoning}, Qty: 2},
		{Card: Card{Name: "Pedaggio", Kind: KindImprevisto, Effect: EffectExtraSummonCost, Amount: 1}, Qty: 2},
		{Card: Card{Name: "Ladro di Carte", Kind: KindImprevisto, Effect: EffectDiscardRandom}, Qty: 2},
		{Card: Card{Name: "Cometa", Kind: KindImprevisto, Effect: EffectDrawResource, Amount: 1}, Qty: 2},
	}
}

// DefaultSummonSet is the summon deck: demons and artifacts.
func DefaultSummonSet() []CardDef {
	return []CardDef{
		{Card: demon("Folletto", 1, 2, SealFuoco, "", 0, ""), Qty: 3},
		{Card: demon("Spettro", 2, 3, SealAria, "", 0, ""), Qty: 3},
		{Card: demon("Gargolla", 2, 3, SealTerra, SealTerra, 1, "Richiede pietra del suo elemento."), Qty: 3},
		{Card: demon("Succube", 3, 5, SealAcqua, SealAcqua, 1, ""), Qty: 2},
		{Card: demon("Salamandra", 3, 5, SealFuoco, SealFuoco, 1, ""), Qty: 2},
		{Card: demon("Cerbero", 4, 7, SealFuoco, SealFuoco, 2, "Due fiamme per evocarlo."), Qty: 2},
		{Card: demon("Arcidemone", 5, 9, SealLuce, SealLuce, 2, ""), Qty: 1},

		{Card: Card{Name: "Anello del Patto", Kind: KindArtifact, Effect: EffectDrawSummon}, Qty: 2},
		{Card: Card{Name: "Calice Oscuro", Kind: KindArtifact, Effect: EffectStarBonus, Amount: 1}, Qty: 2},
	}
}

// DefaultBossSet is the boss queue before shuffling. Requirement maps are
// keyed by seal; rotation shifts which row applies to which seal.
func DefaultBossSet() []CardDef {
	boss := func(name string, stars int, fuoco, acqua, terra, aria, luce int) Card {
		return Card{
			Name:  name,
			Kind:  KindBoss,
			Stars: stars,
			Requirements: map[Seal]int{
				SealFuoco: fuoco,
				SealAcqua: acqua,
				SealTerra: terra,
				SealAria:  aria,
				SealLuce:  luce,
			},
		}
	}
	return []CardDef{
		{Card: boss("Custode della Soglia", 1, 3, 4, 5, 4, 3), Qty: 1},
		{Card: boss("Signore della Cenere", 2, 4, 6, 5, 7, 6), Qty: 1},
		{Card: boss("Regina degli Abissi", 2, 6, 4, 7, 5, 6), Qty: 1},
		{Card: boss("Golem Antico", 3, 7, 6, 5, 8, 7), Qty: 1},
		{Card: boss("Tiranno dei Venti", 3, 8, 7, 6, 5, 9), Qty: 1},
		{Card: boss("Despota Radioso", 4, 9, 8, 9, 8, 7), Qty: 1},
	}
}
