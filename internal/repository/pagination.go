package repository

// PageRequest selects one page of a listing. Number is 1-based; Last asks
// for the final page whatever its number.
type PageRequest struct {
	Number int
	Last   bool
	Size   int
}

// FirstPage requests page 1 with the given size
func FirstPage(size int) PageRequest {
	return PageRequest{Number: 1, Size: size}
}

// Page describes the position of a page within a listing
type Page struct {
	Number   int
	NumPages int
	Size     int
	Total    int64
}

// HasPrevious reports whether a page precedes this one
func (p Page) HasPrevious() bool { return p.Number > 1 }

// HasNext reports whether a page follows this one
func (p Page) HasNext() bool { return p.Number < p.NumPages }

// PreviousNumber is the number of the preceding page
func (p Page) PreviousNumber() int { return p.Number - 1 }

// NextNumber is the number of the following page
func (p Page) NextNumber() int { return p.Number + 1 }

// Offset is the number of rows before this page
func (p Page) Offset() int { return (p.Number - 1) * p.Size }

// resolvePage validates req against total rows. An empty listing still has
// one (empty) page.
func resolvePage(req PageRequest, total int64) (Page, error) {
	if req.Size <= 0 {
		return Page{}, ErrInvalidInput
	}

	numPages := int((total + int64(req.Size) - 1) / int64(req.Size))
	if numPages == 0 {
		numPages = 1
	}

	number := req.Number
	if req.Last {
		number = numPages
	}
	if number < 1 || number > numPages {
		return Page{}, ErrPageOutOfRange
	}

	return Page{Number: number, NumPages: numPages, Size: req.Size, Total: total}, nil
}
