package score

import "errors"

// TitleFontKeys are the faces of the header frame texts.
var TitleFontKeys = []string{
	"titleFontFace",
	"subTitleFontFace",
	"composerFontFace",
	"lyricistFontFace",
}

// MusicalSymbolFontKeys select the notation glyph font.
var MusicalSymbolFontKeys = []string{
	"musicalSymbolFont",
	"dynamicsFont",
}

// MusicalTextFontKeys select the font used for symbols inside text.
var MusicalTextFontKeys = []string{
	"musicalTextFont",
}

// TextFontKeys are the faces of every other text element.
var TextFontKeys = []string{
	"defaultFontFace",
	"lyricsOddFontFace",
	"lyricsEvenFontFace",
	"hairpinFontFace",
	"pedalFontFace",
	"chordSymbolAFontFace",
	"chordSymbolBFontFace",
	"romanNumeralFontFace",
	"nashvilleNumberFontFace",
	"voltaFontFace",
	"ottavaFontFace",
	"tupletFontFace",
	"translatorFontFace",
	"systemFontFace",
	"staffFontFace",
	"expressionFontFace",
	"tempoFontFace",
	"tempoChangeFontFace",
	"metronomeFontFace",
	"measureNumberFontFace",
	"mmRestRangeFontFace",
	"systemTextFontFace",
	"staffTextFontFace",
	"fingeringFontFace",
	"lhGuitarFingeringFontFace",
	"rhGuitarFingeringFontFace",
	"stringNumberFontFace",
	"harpPedalDiagramFontFace",
	"harpPedalTextDiagramFontFace",
	"longInstrumentFontFace",
	"shortInstrumentFontFace",
	"partInstrumentFontFace",
	"dynamicsFontFace",
	"rehearsalMarkFontFace",
	"repeatLeftFontFace",
	"repeatRightFontFace",
	"frameFontFace",
	"textLineFontFace",
	"systemTextLineFontFace",
	"glissandoFontFace",
	"bendFontFace",
	"headerFontFace",
	"footerFontFace",
	"copyrightFontFace",
	"pageNumberFontFace",
	"instrumentChangeFontFace",
	"stickingFontFace",
	"figuredBassFontFace",
	"letRingFontFace",
	"palmMuteFontFace",
	"fretDiagramFingeringFontFace",
	"fretDiagramFretNumberFontFace",
	"tabFretNumberFontFace",
	"user1FontFace",
	"user2FontFace",
	"user3FontFace",
	"user4FontFace",
	"user5FontFace",
	"user6FontFace",
	"user7FontFace",
	"user8FontFace",
	"user9FontFace",
	"user10FontFace",
	"user11FontFace",
	"user12FontFace",
}

// setAll applies value to every key. Keys are independent, so a failure does
// not stop the remaining ones; all failures are joined.
func (st *Style) setAll(keys []string, value string) error {
	var errs []error
	for _, key := range keys {
		if err := st.Set(key, value); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SetTextFont sets the face of every text element except the header frame.
func (st *Style) SetTextFont(family string) error {
	return st.setAll(TextFontKeys, family)
}

// SetTitleFont sets the faces of title, subtitle, composer and lyricist.
func (st *Style) SetTitleFont(family string) error {
	return st.setAll(TitleFontKeys, family)
}

// SetMusicalSymbolFont selects the notation font, e.g. "Leland".
func (st *Style) SetMusicalSymbolFont(family string) error {
	return st.setAll(MusicalSymbolFontKeys, family)
}

// SetMusicalTextFont selects the text variant of the notation font, e.g. "Leland Text".
func (st *Style) SetMusicalTextFont(family string) error {
	return st.setAll(MusicalTextFontKeys, family)
}
