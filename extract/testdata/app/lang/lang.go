package lang

type Replace map[string]any

func Trans(key string, replace Replace, locale string) string { return key }

func TransChoice(key string, number int, replace Replace, locale string) string { return key }

func Pairs(key string, pairs ...any) string { return key }

func Unrelated(key string) string { return key }

type Translator struct{}

func (t *Translator) Get(key string, replace map[string]string, locale string) string { return key }

func (t *Translator) Choice(key string, number uint8, replace map[string]string, locale string) string {
	return key
}
