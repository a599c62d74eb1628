package alarms

import "fmt"

type messageFunc func(def Definition) (english, farsi string)

// messageTable mirrors conditionTable: one synthesizer per supported
// {item kind class x compare type} combination.
var messageTable = map[conditionKey]messageFunc{
	{false, CompareEqual}: func(def Definition) (string, string) {
		return fmt.Sprintf("%s is equal to %s", def.ItemName, def.Value1),
			fmt.Sprintf("%s برابر است با %s", def.ItemNameFa, def.Value1)
	},
	{false, CompareNotEqual}: func(def Definition) (string, string) {
		return fmt.Sprintf("%s is not equal to %s", def.ItemName, def.Value1),
			fmt.Sprintf("%s برابر نیست با %s", def.ItemNameFa, def.Value1)
	},
	{false, CompareHigher}: func(def Definition) (string, string) {
		return fmt.Sprintf("%s is higher than %s", def.ItemName, def.Value1),
			fmt.Sprintf("%s بیشتر است از %s", def.ItemNameFa, def.Value1)
	},
	{false, CompareLower}: func(def Definition) (string, string) {
		return fmt.Sprintf("%s is lower than %s", def.ItemName, def.Value1),
			fmt.Sprintf("%s کمتر است از %s", def.ItemNameFa, def.Value1)
	},
	{false, CompareBetween}: func(def Definition) (string, string) {
		return fmt.Sprintf("%s is between %s and %s", def.ItemName, def.Value1, def.Value2),
			fmt.Sprintf("%s بین %s و %s است", def.ItemNameFa, def.Value1, def.Value2)
	},
	{true, CompareEqual}: func(def Definition) (string, string) {
		en, fa := def.matchedLabels(true)
		return fmt.Sprintf("%s is %s", def.ItemName, en),
			fmt.Sprintf("%s %s است", def.ItemNameFa, fa)
	},
	{true, CompareNotEqual}: func(def Definition) (string, string) {
		en, fa := def.matchedLabels(false)
		return fmt.Sprintf("%s is %s", def.ItemName, en),
			fmt.Sprintf("%s %s است", def.ItemNameFa, fa)
	},
}

// Messages resolves the bilingual message pair for an activation. Configured
// templates win; otherwise the pair is synthesized from the definition.
func Messages(def Definition, digital bool) (english, farsi string) {
	english = def.Message
	farsi = def.MessageFa
	if english != "" && farsi != "" {
		return english, farsi
	}
	synth, ok := messageTable[conditionKey{digital: digital, compare: def.Compare}]
	if !ok {
		synth = timeoutMessage
	}
	if def.Type == TypeTimeout {
		synth = timeoutMessage
	}
	en, fa := synth(def)
	if english == "" {
		english = en
	}
	if farsi == "" {
		farsi = fa
	}
	return english, farsi
}

func timeoutMessage(def Definition) (string, string) {
	return fmt.Sprintf("%s has not been updated for %d seconds", def.ItemName, def.TimeoutSeconds),
		fmt.Sprintf("%s به مدت %d ثانیه به‌روزرسانی نشده است", def.ItemNameFa, def.TimeoutSeconds)
}

// matchedLabels returns the on/off text pair for the digital state that
// satisfied the comparison.
func (d Definition) matchedLabels(equal bool) (string, string) {
	want := d.Value1 == "1" || d.Value1 == "true"
	matched := want
	if !equal {
		matched = !want
	}
	en, fa := d.OffText, d.OffTextFa
	if matched {
		en, fa = d.OnText, d.OnTextFa
	}
	if en == "" {
		if matched {
			en = "on"
		} else {
			en = "off"
		}
	}
	if fa == "" {
		if matched {
			fa = "روشن"
		} else {
			fa = "خاموش"
		}
	}
	return en, fa
}
