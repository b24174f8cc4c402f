package coach

// builtinSkills answer locally without calling the proxy
var builtinSkills = map[string]string{
	"start-line": `Start line checklist:
- Run the line both ways before the warning signal and note the favoured end with a compass bearing.
- Take a transit off the pin so you know where the line is from the second row.
- Set up 3 to 4 boat lengths below the line at one minute and protect the gap to leeward.
- Accelerate with about 8 seconds to go; full speed at the gun beats a perfect position at low speed.`,

	"upwind-tactics": `Upwind:
- Sail the lifted tack towards the next expected shift and tack on headers of 5 degrees or more.
- Stay between the fleet and the next mark once you are ahead; consolidate rather than split.
- Avoid the laylines early; every boat that overstands is a boat you pass.
- Keep your lane: if you are pinned by a boat to windward, tack to clear air before you lose height.`,

	"downwind-tactics": `Downwind:
- Gybe on the headers: in a lift the bow points further from the mark, so gybe to sail closer.
- Keep clear air; a boat behind you steals your wind, so gybe away early.
- Sail hot angles in light air and deeper in a breeze to keep VMG high.
- Plan the approach to the leeward gate two gybes out and pick the gate that favours the next beat.`,

	"mark-rounding": `Mark rounding:
- Enter wide and exit tight so you leave the mark on the new course with speed.
- Have the boat set up for the next leg before the zone: sails, controls and crew weight.
- Claim inside overlap before the three-length zone and hail clearly.
- After the rounding, look for clear air and consider an early tack if the fleet is stacked.`,

	"heavy-air": `Heavy air:
- Flatten the sails: more outhaul, cunningham and vang; ease the traveller to depower in gusts.
- Hike hard and keep the boat flat; heel is drag and loses height.
- Steer through the waves, bearing away down the back of each one to keep speed.
- Tack in the lulls and gybe at full speed when the apparent wind is lowest.`,
}

// BuiltinSkills returns the ids of the skills answered locally
func BuiltinSkills() []string {
	return []string{"start-line", "upwind-tactics", "downwind-tactics", "mark-rounding", "heavy-air"}
}

// builtinAdvice returns the first requested skill that has a canned answer
func builtinAdvice(skills []string) (skill, text string, ok bool) {
	for _, s := range skills {
		if text, found := builtinSkills[s]; found {
			return s, text, true
		}
	}
	return "", "", false
}
